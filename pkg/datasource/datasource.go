package datasource

import (
	"context"

	"github.com/opscart/actions-usage/pkg/models"
)

// DataSource defines the interface for retrieving workflow usage
type DataSource interface {
	ListOwnedRepositories(ctx context.Context) ([]models.Repository, error)
	ListWorkflowRuns(ctx context.Context, repo models.Repository) ([]models.WorkflowRun, error)
	ListJobs(ctx context.Context, run models.WorkflowRun) ([]models.Job, error)

	// RunDurationMS reads the run's timing resource; 0 when it carries no duration
	RunDurationMS(ctx context.Context, run models.WorkflowRun) (int64, error)

	Name() string
}

// PageSize is the per_page value sent to list endpoints
const PageSize = 100
