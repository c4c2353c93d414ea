package scanner

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/opscart/actions-usage/pkg/analyzer"
	"github.com/opscart/actions-usage/pkg/datasource"
	"github.com/opscart/actions-usage/pkg/metrics"
	"github.com/opscart/actions-usage/pkg/models"
	"github.com/opscart/actions-usage/pkg/output"
)

const DefaultWorkers = 10

// SourceFactory creates the data source a single worker uses for all of its
// tasks. It is called once per worker, from that worker's goroutine.
type SourceFactory func() datasource.DataSource

// RepoFailure records a repository whose usage could not be collected
type RepoFailure struct {
	Repo models.Repository
	Err  error
}

// Result is the outcome of a collection run
type Result struct {
	Summary *analyzer.Summary
	Failed  []RepoFailure

	// Completed counts finished tasks, failed ones included
	Completed int
	Total     int
}

// Succeeded returns the number of repositories that contributed usage
func (r *Result) Succeeded() int {
	return r.Completed - len(r.Failed)
}

type Option func(*Collector)

func WithWorkers(workers int) Option {
	return func(c *Collector) {
		c.workers = workers
	}
}

func WithHandler(handler output.Handler) Option {
	return func(c *Collector) {
		c.handler = handler
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Collector) {
		c.metrics = collector
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// Collector fans repository traversal out over a fixed pool of workers and
// merges their usage into one summary
type Collector struct {
	newSource SourceFactory
	workers   int
	handler   output.Handler
	metrics   *metrics.Collector
	logger    logrus.FieldLogger
}

func New(newSource SourceFactory, opts ...Option) *Collector {
	c := &Collector{
		newSource: newSource,
		workers:   DefaultWorkers,
		handler:   output.Discard{},
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	return c
}

type taskResult struct {
	repo  models.Repository
	usage analyzer.Usage
	err   error
}

// Collect processes every repository exactly once and returns the merged usage.
// A failing repository is recorded in Result.Failed and does not affect the
// others. The returned error is only set when ctx ended before all tasks ran.
func (c *Collector) Collect(ctx context.Context, repos []models.Repository, breakdown models.Breakdown) (*Result, error) {
	result := &Result{
		Summary: analyzer.NewSummary(),
		Total:   len(repos),
	}
	if len(repos) == 0 {
		return result, nil
	}

	workers := min(c.workers, len(repos))
	c.logger.WithFields(logrus.Fields{
		"repositories": len(repos),
		"workers":      workers,
		"breakdown":    breakdown,
	}).Info("Collecting workflow usage")

	a := analyzer.New(breakdown, c.logger)
	tasks := make(chan models.Repository)
	results := make(chan taskResult)

	var wg conc.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Go(func() {
			c.work(ctx, a, tasks, results)
		})
	}

	go func() {
		defer close(tasks)
		for _, repo := range repos {
			tasks <- repo
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Completed++
		c.metrics.RepositoryDone(res.err)

		if res.err != nil {
			result.Failed = append(result.Failed, RepoFailure{Repo: res.repo, Err: res.err})
		} else {
			result.Summary.Merge(res.usage)
		}

		progress := output.Progress{
			Completed:  result.Completed,
			Total:      result.Total,
			Repository: res.repo,
			Err:        res.err,
		}
		if err := c.handler.DisplayProgress(ctx, progress); err != nil {
			c.logger.WithError(err).Warning("Failed to display progress")
		}
	}

	if err := c.handler.DisplaySummary(ctx, result.Completed, len(result.Failed)); err != nil {
		c.logger.WithError(err).Warning("Failed to display summary")
	}

	return result, ctx.Err()
}

func (c *Collector) work(ctx context.Context, a *analyzer.Analyzer, tasks <-chan models.Repository, results chan<- taskResult) {
	var src datasource.DataSource

	for repo := range tasks {
		if src == nil {
			src = c.newSource()
		}
		results <- c.process(ctx, a, src, repo)
	}
}

func (c *Collector) process(ctx context.Context, a *analyzer.Analyzer, src datasource.DataSource, repo models.Repository) taskResult {
	res := taskResult{repo: repo}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	var pc panics.Catcher
	pc.Try(func() {
		res.usage, res.err = a.AnalyzeRepository(ctx, src, repo)
	})
	if r := pc.Recovered(); r != nil {
		res.usage = nil
		res.err = fmt.Errorf("panic while processing %s: %w", repo.FullName(), r.AsError())
	}
	return res
}
