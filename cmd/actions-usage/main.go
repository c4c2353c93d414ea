package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Usage flags
	byRepo            bool
	byWorkflow        bool
	breakdownName     string
	workers           int
	outputFormat      string
	reportOutput      string
	metricsFile       string
	envFile           string
	costFile          string
	requestsPerSecond float64
	verbose           bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "actions-usage",
		Short: "GitHub Actions usage reporter",
		Long: `Report compute-minute usage and projected cost of GitHub Actions workflow runs
across all repositories owned by the authenticated user.`,
		Args: cobra.NoArgs,
		Run:  runUsage,
	}

	rootCmd.Flags().BoolVar(&byRepo, "by-repo", false, "Break down usage by repository")
	rootCmd.Flags().BoolVar(&byWorkflow, "by-workflow", false, "Break down usage by workflow within each repository (overrides --by-repo)")
	rootCmd.Flags().StringVar(&breakdownName, "breakdown", "", "Usage breakdown: none, repo, workflow (overrides --by-repo and --by-workflow)")
	rootCmd.Flags().IntVar(&workers, "workers", 10, "Number of parallel workers")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, markdown, html, csv, json")
	rootCmd.Flags().StringVar(&reportOutput, "report-output", "", "Write the report to a file instead of stdout")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write API metrics in Prometheus text format to this file")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.Flags().StringVar(&costFile, "config", "", "Cost table YAML file (default: config.yaml)")
	rootCmd.Flags().Float64Var(&requestsPerSecond, "requests-per-second", 0, "Client-side request rate limit, 0 for unlimited")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
