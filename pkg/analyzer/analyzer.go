package analyzer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/opscart/actions-usage/pkg/datasource"
	"github.com/opscart/actions-usage/pkg/models"
)

type Analyzer struct {
	breakdown models.Breakdown
	logger    logrus.FieldLogger
}

func New(breakdown models.Breakdown, logger logrus.FieldLogger) *Analyzer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Analyzer{
		breakdown: breakdown,
		logger:    logger,
	}
}

// AnalyzeRepository walks every run and job of repo and returns the minutes it
// used. Runs and jobs are fetched sequentially; any failure aborts the
// repository and discards its partial usage.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, src datasource.DataSource, repo models.Repository) (Usage, error) {
	runs, err := src.ListWorkflowRuns(ctx, repo)
	if err != nil {
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"repository": repo.FullName(),
		"runs":       len(runs),
	}).Debug("Analyzing workflow runs")

	usage := make(Usage)
	for _, run := range runs {
		if err := a.analyzeRun(ctx, src, repo, run, usage); err != nil {
			return nil, err
		}
	}
	return usage, nil
}

func (a *Analyzer) analyzeRun(ctx context.Context, src datasource.DataSource, repo models.Repository, run models.WorkflowRun, usage Usage) error {
	jobs, err := src.ListJobs(ctx, run)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		minutes, err := MinutesForJob(ctx, job, run, src)
		if err != nil {
			return err
		}

		key := a.breakdown.Key(repo.Name, run.Name, Classify(job.Labels))
		usage.Add(key, minutes)
	}
	return nil
}
