package output

import (
	"context"

	"github.com/opscart/actions-usage/pkg/models"
)

// Progress describes one finished repository task
type Progress struct {
	Completed  int
	Total      int
	Repository models.Repository
	Err        error
}

// Handler receives progress as repository tasks finish
type Handler interface {
	DisplayProgress(ctx context.Context, p Progress) error
	DisplaySummary(ctx context.Context, completed, failed int) error
}
