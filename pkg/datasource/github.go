package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/opscart/actions-usage/pkg/models"
	"github.com/opscart/actions-usage/pkg/pager"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public GitHub REST API
const DefaultBaseURL = "https://api.github.com"

// workflowJob extends the library type with the job-level timing GitHub
// returns for some runners
type workflowJob struct {
	github.WorkflowJob
	RunDurationMS *int64 `json:"run_duration_ms,omitempty"`
}

// GitHubSource reads repositories, runs and jobs from the GitHub REST API
type GitHubSource struct {
	baseURL string
	pager   *pager.Pager
	logger  logrus.FieldLogger
}

// NewGitHubSource creates a source issuing requests through getter
func NewGitHubSource(baseURL string, getter pager.Getter, logger logrus.FieldLogger) *GitHubSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &GitHubSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		pager:   pager.New(getter, logger),
		logger:  logger,
	}
}

// ListOwnedRepositories lists repositories owned by the token's user, forks excluded
func (g *GitHubSource) ListOwnedRepositories(ctx context.Context) ([]models.Repository, error) {
	url := fmt.Sprintf("%s/user/repos?per_page=%d&type=owner", g.baseURL, PageSize)

	repos, err := pager.Fetch(ctx, g.pager, url, pager.Array[*github.Repository]())
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	owned := lo.FilterMap(repos, func(r *github.Repository, _ int) (models.Repository, bool) {
		return models.Repository{
			Owner: r.GetOwner().GetLogin(),
			Name:  r.GetName(),
			Fork:  r.GetFork(),
		}, !r.GetFork()
	})

	g.logger.
		WithFields(logrus.Fields{
			"total": len(repos),
			"owned": len(owned),
		}).
		Debugln("Listed repositories")

	return owned, nil
}

// ListWorkflowRuns lists every workflow run of repo
func (g *GitHubSource) ListWorkflowRuns(ctx context.Context, repo models.Repository) ([]models.WorkflowRun, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/runs?per_page=%d", g.baseURL, repo.Owner, repo.Name, PageSize)

	runs, err := pager.Fetch(ctx, g.pager, url, pager.Field[*github.WorkflowRun]("workflow_runs"))
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow runs of %s: %w", repo.FullName(), err)
	}

	return lo.Map(runs, func(r *github.WorkflowRun, _ int) models.WorkflowRun {
		name := models.UnknownWorkflow
		if r.Name != nil {
			name = r.GetName()
		}
		return models.WorkflowRun{
			Repository: repo,
			ID:         r.GetID(),
			Name:       name,
			URL:        r.GetURL(),
		}
	}), nil
}

// ListJobs lists the jobs of run
func (g *GitHubSource) ListJobs(ctx context.Context, run models.WorkflowRun) ([]models.Job, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%d/jobs?per_page=%d",
		g.baseURL, run.Repository.Owner, run.Repository.Name, run.ID, PageSize)

	jobs, err := pager.Fetch(ctx, g.pager, url, pager.Field[workflowJob]("jobs"))
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs of run %d: %w", run.ID, err)
	}

	return lo.Map(jobs, func(j workflowJob, _ int) models.Job {
		return models.Job{
			ID:            j.GetID(),
			Name:          j.GetName(),
			Labels:        j.Labels,
			RunDurationMS: j.RunDurationMS,
		}
	}), nil
}

// RunDurationMS reads run_duration_ms from the run's timing resource
func (g *GitHubSource) RunDurationMS(ctx context.Context, run models.WorkflowRun) (int64, error) {
	resp, err := g.pager.Get(ctx, run.TimingURL())
	if err != nil {
		return 0, fmt.Errorf("failed to get timing of run %d: %w", run.ID, err)
	}
	if !resp.OK() {
		g.logger.
			WithError(pager.NewStatusError(resp)).
			WithFields(logrus.Fields{
				"run_id": run.ID,
				"status": resp.StatusCode,
			}).
			Warningln("Couldn't get run timing, assuming zero duration")
		return 0, nil
	}

	var usage github.WorkflowRunUsage
	if err := json.Unmarshal(resp.Body, &usage); err != nil {
		g.logger.
			WithError(err).
			WithField("run_id", run.ID).
			Debugln("Unexpected timing payload, assuming zero duration")
		return 0, nil
	}

	return usage.GetRunDurationMS(), nil
}

func (g *GitHubSource) Name() string {
	return "GitHub"
}
