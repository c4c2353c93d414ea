package output

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogHandler reports progress through a logrus logger
type LogHandler struct {
	logger logrus.FieldLogger
}

func NewLogHandler(logger logrus.FieldLogger) *LogHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogHandler{logger: logger}
}

func (h *LogHandler) DisplayProgress(_ context.Context, p Progress) error {
	entry := h.logger.WithFields(logrus.Fields{
		"repository": p.Repository.FullName(),
		"completed":  p.Completed,
		"total":      p.Total,
	})

	if p.Err != nil {
		entry.WithError(p.Err).Errorf("[%d/%d] Error processing %s", p.Completed, p.Total, p.Repository.Name)
		return nil
	}

	entry.Infof("[%d/%d] Processed %s", p.Completed, p.Total, p.Repository.Name)
	return nil
}

func (h *LogHandler) DisplaySummary(_ context.Context, completed, failed int) error {
	entry := h.logger.WithFields(logrus.Fields{
		"completed": completed,
		"failed":    failed,
	})
	if failed > 0 {
		entry.Warning("Some repositories could not be processed")
		return nil
	}
	entry.Info("All repositories processed")
	return nil
}

// Discard drops all progress
type Discard struct{}

func (Discard) DisplayProgress(context.Context, Progress) error { return nil }

func (Discard) DisplaySummary(context.Context, int, int) error { return nil }
