package reporter

import (
	"fmt"
	"html/template"
	"io"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>GitHub Actions Usage Report - {{.RunID}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #24292f 0%, #57606a 100%);
            color: white;
            padding: 40px;
        }
        .summary {
            display: flex;
            gap: 20px;
            padding: 30px 40px;
        }
        .summary-card {
            flex: 1;
            background: #f6f8fa;
            border-radius: 6px;
            padding: 20px;
        }
        .summary-card .value {
            font-size: 2em;
            font-weight: 600;
        }
        .section {
            padding: 0 40px 30px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            padding: 10px 12px;
            border-bottom: 1px solid #d0d7de;
            text-align: left;
        }
        td.number, th.number {
            text-align: right;
        }
        tfoot td {
            font-weight: 600;
        }
        .note {
            color: #57606a;
            font-style: italic;
        }
        .failed li {
            color: #cf222e;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>GitHub Actions Usage Report</h1>
            <p><strong>Run:</strong> {{.RunID}} | <strong>Breakdown:</strong> {{.Breakdown}} | <strong>Pricing:</strong> {{.Pricing}}</p>
            <p><strong>Generated:</strong> {{.GeneratedAt.Format "January 2, 2006 15:04:05 MST"}}</p>
        </div>

        <div class="summary">
            <div class="summary-card">
                <h3>Total Minutes</h3>
                <div class="value">{{minutes .TotalMinutes}}</div>
            </div>
            <div class="summary-card">
                <h3>Total Cost</h3>
                <div class="value">{{cost .TotalCost}}</div>
            </div>
            <div class="summary-card">
                <h3>Repositories</h3>
                <div class="value">{{.Repositories}}</div>
            </div>
        </div>

        <div class="section">
            <p class="note">{{note}}</p>
            <table>
                <thead>
                    <tr>
                        {{range .Headers}}<th>{{.}}</th>{{end}}
                    </tr>
                </thead>
                <tbody>
                    {{range .Rows}}
                    <tr>
                        {{if $.Breakdown.IncludesRepository}}<td>{{.Repository}}</td>{{end}}
                        {{if $.Breakdown.IncludesWorkflow}}<td>{{.Workflow}}</td>{{end}}
                        <td>{{.RunnerType}}</td>
                        <td>{{.OS}}</td>
                        <td class="number">{{minutes .Minutes}}</td>
                        <td class="number">{{cost .Cost}}</td>
                    </tr>
                    {{end}}
                </tbody>
                <tfoot>
                    <tr>
                        <td colspan="{{labelColumns .}}">Total</td>
                        <td class="number">{{minutes .TotalMinutes}}</td>
                        <td class="number">{{cost .TotalCost}}</td>
                    </tr>
                </tfoot>
            </table>
        </div>

        {{if .Failed}}
        <div class="section failed">
            <h2>Failed Repositories</h2>
            <ul>
                {{range .Failed}}<li><strong>{{.Repository}}</strong>: {{.Error}}</li>{{end}}
            </ul>
        </div>
        {{end}}

        <div class="section">
            <p>{{.APICalls}} API calls in {{printf "%.1f" .Elapsed.Seconds}} seconds</p>
        </div>
    </div>
</body>
</html>
`

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"minutes": FormatMinutes,
	"cost":    FormatCost,
	"note":    func() string { return selfHostedNote },
	"labelColumns": func(r *Report) int {
		return len(r.Headers()) - 2
	},
}).Parse(htmlTemplate))

// GenerateHTML creates an HTML report
func GenerateHTML(report *Report, writer io.Writer) error {
	if err := htmlReport.Execute(writer, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
