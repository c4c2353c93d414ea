package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opscart/actions-usage/pkg/config"
	"github.com/opscart/actions-usage/pkg/datasource"
	"github.com/opscart/actions-usage/pkg/httpclient"
	"github.com/opscart/actions-usage/pkg/metrics"
	"github.com/opscart/actions-usage/pkg/models"
	"github.com/opscart/actions-usage/pkg/output"
	"github.com/opscart/actions-usage/pkg/pricing"
	"github.com/opscart/actions-usage/pkg/reporter"
	"github.com/opscart/actions-usage/pkg/scanner"
)

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// applyFlags overrides configuration with the flags set on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("config") {
		cfg.CostFile = costFile
	}
	if cmd.Flags().Changed("requests-per-second") {
		cfg.RequestsPerSecond = requestsPerSecond
	}
}

// resolveBreakdown picks the dimensions usage is keyed by. An explicit
// --breakdown wins over --by-repo and --by-workflow.
func resolveBreakdown(cmd *cobra.Command) (models.Breakdown, error) {
	if cmd.Flags().Changed("breakdown") {
		return models.ParseBreakdown(breakdownName)
	}
	return models.BreakdownFor(byRepo, byWorkflow), nil
}

func fatal(logger logrus.FieldLogger, format string, args ...interface{}) {
	logger.Errorf(format, args...)
	os.Exit(1)
}

func runUsage(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(verbose)

	cfg, err := config.Load(envFile)
	if err != nil {
		fatal(logger, "Error loading configuration: %v", err)
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		fatal(logger, "Invalid configuration: %v", err)
	}

	format, err := reporter.ParseFormat(outputFormat)
	if err != nil {
		fatal(logger, "Error: %v", err)
	}
	breakdown, err := resolveBreakdown(cmd)
	if err != nil {
		fatal(logger, "Error: %v", err)
	}

	provider, err := pricing.NewProvider(cfg.CostFile, logger)
	if err != nil {
		fatal(logger, "Error loading cost table: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	client := httpclient.New(cfg.GitHubToken,
		httpclient.WithTimeout(cfg.RequestTimeout),
		httpclient.WithRequestsPerSecond(cfg.RequestsPerSecond),
		httpclient.WithCollector(collector),
		httpclient.WithLogger(logger),
	)
	newSource := func() datasource.DataSource {
		return datasource.NewGitHubSource(cfg.APIURL, client.NewSession(), logger)
	}

	repos, err := newSource().ListOwnedRepositories(ctx)
	if err != nil {
		fatal(logger, "Error listing repositories: %v", err)
	}

	logger.Infof("Processing %d repositories with %d parallel workers...", len(repos), cfg.Workers)

	result, err := scanner.New(newSource,
		scanner.WithWorkers(cfg.Workers),
		scanner.WithHandler(output.NewLogHandler(logger)),
		scanner.WithMetrics(collector),
		scanner.WithLogger(logger),
	).Collect(ctx, repos, breakdown)
	if err != nil {
		logger.WithError(err).Warning("Collection interrupted, reporting partial usage")
	}

	rep := reporter.New(format, provider)
	report, err := rep.Generate(result, breakdown, client.Calls(), time.Since(start))
	if err != nil {
		fatal(logger, "Error generating report: %v", err)
	}

	if err := writeReport(rep, report, reportOutput); err != nil {
		fatal(logger, "Error writing report: %v", err)
	}
	if reportOutput != "" {
		logger.WithField("format", rep.Format()).Infof("Report saved to: %s", reportOutput)
	}

	if metricsFile != "" {
		if err := writeMetrics(collector, metricsFile); err != nil {
			fatal(logger, "Error writing metrics: %v", err)
		}
		logger.Debugf("Metrics saved to: %s", metricsFile)
	}

	if ctx.Err() != nil {
		os.Exit(130)
	}
}

func writeReport(rep *reporter.Reporter, report *reporter.Report, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return rep.Write(report, w)
}

func writeMetrics(collector *metrics.Collector, path string) error {
	registry, err := metrics.NewRegistry(collector)
	if err != nil {
		return err
	}
	return metrics.WriteFile(path, registry)
}
