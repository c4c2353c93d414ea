package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/actions-usage/pkg/models"
)

type fakeSource struct {
	runs       map[string][]models.WorkflowRun
	jobs       map[int64][]models.Job
	timing     map[int64]int64
	timingHits map[int64]int
	runsErr    error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		runs:       map[string][]models.WorkflowRun{},
		jobs:       map[int64][]models.Job{},
		timing:     map[int64]int64{},
		timingHits: map[int64]int{},
	}
}

func (f *fakeSource) ListOwnedRepositories(context.Context) ([]models.Repository, error) {
	return nil, nil
}

func (f *fakeSource) ListWorkflowRuns(_ context.Context, repo models.Repository) ([]models.WorkflowRun, error) {
	if f.runsErr != nil {
		return nil, f.runsErr
	}
	return f.runs[repo.Name], nil
}

func (f *fakeSource) ListJobs(_ context.Context, run models.WorkflowRun) ([]models.Job, error) {
	return f.jobs[run.ID], nil
}

func (f *fakeSource) RunDurationMS(_ context.Context, run models.WorkflowRun) (int64, error) {
	f.timingHits[run.ID]++
	return f.timing[run.ID], nil
}

func (f *fakeSource) Name() string {
	return "fake"
}

func ms(v int64) *int64 {
	return &v
}

func newTestAnalyzer(b models.Breakdown) *Analyzer {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return New(b, logger)
}

func TestAnalyzeRepository(t *testing.T) {
	repo := models.Repository{Owner: "octo", Name: "api"}
	src := newFakeSource()
	src.runs["api"] = []models.WorkflowRun{
		{Repository: repo, ID: 1, Name: "CI", URL: "https://api.github.com/repos/octo/api/actions/runs/1"},
		{Repository: repo, ID: 2, Name: "Release", URL: "https://api.github.com/repos/octo/api/actions/runs/2"},
	}
	src.jobs[1] = []models.Job{
		{ID: 10, Labels: []string{"ubuntu-latest"}, RunDurationMS: ms(90_000)},
		{ID: 11, Labels: []string{"windows"}, RunDurationMS: ms(1)},
	}
	src.jobs[2] = []models.Job{
		{ID: 20, Labels: []string{"self-hosted", "linux"}},
		{ID: 21, Labels: []string{"self-hosted", "macos"}},
	}
	src.timing[2] = 120_000

	linux := models.ClassificationKey{RunnerType: models.RunnerGitHubHosted, OS: models.OSLinux}
	windows := models.ClassificationKey{RunnerType: models.RunnerGitHubHosted, OS: models.OSWindows}
	selfHosted := models.ClassificationKey{RunnerType: models.RunnerSelfHosted, OS: models.OSAll}

	tests := []struct {
		breakdown models.Breakdown
		expected  Usage
	}{
		{
			breakdown: models.BreakdownNone,
			expected: Usage{
				models.BreakdownNone.Key("", "", linux):      2,
				models.BreakdownNone.Key("", "", windows):    1,
				models.BreakdownNone.Key("", "", selfHosted): 4,
			},
		},
		{
			breakdown: models.BreakdownRepo,
			expected: Usage{
				models.BreakdownRepo.Key("api", "", linux):      2,
				models.BreakdownRepo.Key("api", "", windows):    1,
				models.BreakdownRepo.Key("api", "", selfHosted): 4,
			},
		},
		{
			breakdown: models.BreakdownWorkflow,
			expected: Usage{
				models.BreakdownWorkflow.Key("api", "CI", linux):           2,
				models.BreakdownWorkflow.Key("api", "CI", windows):         1,
				models.BreakdownWorkflow.Key("api", "Release", selfHosted): 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.breakdown), func(t *testing.T) {
			usage, err := newTestAnalyzer(tt.breakdown).AnalyzeRepository(context.Background(), src, repo)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, usage)
		})
	}
}

func TestAnalyzeRepositoryFetchesTimingPerJob(t *testing.T) {
	repo := models.Repository{Owner: "octo", Name: "api"}
	src := newFakeSource()
	src.runs["api"] = []models.WorkflowRun{{Repository: repo, ID: 7, Name: "CI"}}
	src.jobs[7] = []models.Job{{ID: 1}, {ID: 2}, {ID: 3, RunDurationMS: ms(0)}}
	src.timing[7] = 61_000

	usage, err := newTestAnalyzer(models.BreakdownNone).AnalyzeRepository(context.Background(), src, repo)
	require.NoError(t, err)

	key := models.BreakdownNone.Key("", "", models.ClassificationKey{RunnerType: models.RunnerGitHubHosted, OS: models.OSLinux})
	assert.Equal(t, Usage{key: 4}, usage)
	assert.Equal(t, 2, src.timingHits[7])
}

func TestAnalyzeRepositorySelfHostedRoundsUp(t *testing.T) {
	repo := models.Repository{Owner: "octo", Name: "infra"}
	src := newFakeSource()
	src.runs["infra"] = []models.WorkflowRun{{Repository: repo, ID: 1, Name: "Deploy"}}
	src.jobs[1] = []models.Job{{ID: 1, Labels: []string{"self-hosted", "linux"}, RunDurationMS: ms(59_999)}}

	usage, err := newTestAnalyzer(models.BreakdownNone).AnalyzeRepository(context.Background(), src, repo)
	require.NoError(t, err)

	key := models.BreakdownNone.Key("", "", models.ClassificationKey{RunnerType: models.RunnerSelfHosted, OS: models.OSAll})
	assert.Equal(t, Usage{key: 1}, usage)
}

func TestAnalyzeRepositoryWithoutJobs(t *testing.T) {
	repo := models.Repository{Owner: "octo", Name: "docs"}
	src := newFakeSource()
	src.runs["docs"] = []models.WorkflowRun{{Repository: repo, ID: 1, Name: "Pages"}}

	usage, err := newTestAnalyzer(models.BreakdownRepo).AnalyzeRepository(context.Background(), src, repo)
	require.NoError(t, err)
	assert.Empty(t, usage)
}

func TestAnalyzeRepositoryError(t *testing.T) {
	src := newFakeSource()
	src.runsErr = errors.New("boom")

	usage, err := newTestAnalyzer(models.BreakdownRepo).AnalyzeRepository(context.Background(), src, models.Repository{Name: "x"})
	assert.ErrorIs(t, err, src.runsErr)
	assert.Nil(t, usage)
}
