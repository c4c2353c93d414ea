package reporter

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/opscart/actions-usage/pkg/models"
	"github.com/opscart/actions-usage/pkg/pricing"
	"github.com/opscart/actions-usage/pkg/scanner"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatTable    ReportFormat = "table"
	FormatMarkdown ReportFormat = "markdown"
	FormatHTML     ReportFormat = "html"
	FormatCSV      ReportFormat = "csv"
	FormatJSON     ReportFormat = "json"
)

// Formats lists every supported format
var Formats = []ReportFormat{FormatTable, FormatMarkdown, FormatHTML, FormatCSV, FormatJSON}

func ParseFormat(s string) (ReportFormat, error) {
	f := ReportFormat(s)
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown output format: %s", s)
	}
	return f, nil
}

const selfHostedNote = "GitHub-hosted runner costs reflect actual pricing. " +
	"Self-hosted runner costs are hypothetical (what you would pay if billed)."

// Row is one line of the usage report
type Row struct {
	Repository string            `json:"repository,omitempty"`
	Workflow   string            `json:"workflow,omitempty"`
	RunnerType models.RunnerType `json:"runner_type"`
	OS         models.OSKey      `json:"os"`
	Minutes    int64             `json:"minutes"`
	Cost       float64           `json:"cost"`
}

// FailedRepository is a repository excluded from the report
type FailedRepository struct {
	Repository string `json:"repository"`
	Error      string `json:"error"`
}

// Report contains all data for generating reports
type Report struct {
	RunID        string             `json:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Breakdown    models.Breakdown   `json:"breakdown"`
	Pricing      string             `json:"pricing"`
	Rows         []Row              `json:"rows"`
	TotalMinutes int64              `json:"total_minutes"`
	TotalCost    float64            `json:"total_cost"`
	Repositories int                `json:"repositories"`
	Failed       []FailedRepository `json:"failed,omitempty"`
	APICalls     int64              `json:"api_calls"`
	Elapsed      time.Duration      `json:"elapsed_ns"`
}

// Headers returns the column headers for the report's breakdown
func (r *Report) Headers() []string {
	return Headers(r.Breakdown)
}

// Headers returns the column headers for a breakdown
func Headers(b models.Breakdown) []string {
	var headers []string
	if b.IncludesRepository() {
		headers = append(headers, "Repository")
	}
	if b.IncludesWorkflow() {
		headers = append(headers, "Workflow")
	}
	return append(headers, "Runner Type", "OS", "Minutes", "Cost")
}

// Values returns the formatted cells of row for breakdown b
func (row Row) Values(b models.Breakdown) []string {
	var values []string
	if b.IncludesRepository() {
		values = append(values, row.Repository)
	}
	if b.IncludesWorkflow() {
		values = append(values, row.Workflow)
	}
	return append(values,
		string(row.RunnerType),
		string(row.OS),
		FormatMinutes(row.Minutes),
		FormatCost(row.Cost),
	)
}

func FormatMinutes(minutes int64) string {
	return fmt.Sprintf("%d", minutes)
}

func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.2f", cost)
}

// Reporter generates usage reports
type Reporter struct {
	format  ReportFormat
	pricing pricing.Provider
	now     func() time.Time
}

// New creates a new reporter
func New(format ReportFormat, provider pricing.Provider) *Reporter {
	return &Reporter{
		format:  format,
		pricing: provider,
		now:     time.Now,
	}
}

func (r *Reporter) Format() ReportFormat {
	return r.format
}

// Generate prices the collected usage and builds the report
func (r *Reporter) Generate(result *scanner.Result, breakdown models.Breakdown, apiCalls int64, elapsed time.Duration) (*Report, error) {
	if result == nil || result.Summary == nil {
		return nil, fmt.Errorf("no usage collected")
	}

	report := &Report{
		RunID:        uuid.NewString(),
		GeneratedAt:  r.now(),
		Breakdown:    breakdown,
		Pricing:      r.pricing.Name(),
		Repositories: result.Total,
		APICalls:     apiCalls,
		Elapsed:      elapsed,
	}

	for _, entry := range result.Summary.Entries() {
		cost := pricing.Cost(r.pricing, entry.Key.Class, entry.Minutes)
		report.Rows = append(report.Rows, Row{
			Repository: entry.Key.Repository,
			Workflow:   entry.Key.Workflow,
			RunnerType: entry.Key.Class.RunnerType,
			OS:         entry.Key.Class.OS,
			Minutes:    entry.Minutes,
			Cost:       cost,
		})
		report.TotalMinutes += entry.Minutes
		report.TotalCost += cost
	}

	report.Failed = lo.Map(result.Failed, func(f scanner.RepoFailure, _ int) FailedRepository {
		return FailedRepository{Repository: f.Repo.FullName(), Error: f.Err.Error()}
	})
	slices.SortFunc(report.Failed, func(a, b FailedRepository) int {
		return cmp.Compare(a.Repository, b.Repository)
	})

	return report, nil
}

// Write renders report in the reporter's format
func (r *Reporter) Write(report *Report, w io.Writer) error {
	switch r.format {
	case FormatTable:
		return GenerateTable(report, w)
	case FormatMarkdown:
		return GenerateMarkdown(report, w)
	case FormatHTML:
		return GenerateHTML(report, w)
	case FormatCSV:
		return GenerateCSV(report, w)
	case FormatJSON:
		return GenerateJSON(report, w)
	default:
		return fmt.Errorf("unknown output format: %s", r.format)
	}
}
