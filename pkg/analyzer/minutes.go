package analyzer

import (
	"context"

	"github.com/opscart/actions-usage/pkg/models"
)

const millisPerMinute = 60_000

// TimingSource supplies run-level durations for jobs without their own timing
type TimingSource interface {
	RunDurationMS(ctx context.Context, run models.WorkflowRun) (int64, error)
}

// RoundUpMinutes converts milliseconds to whole minutes, rounding any started
// minute up
func RoundUpMinutes(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + millisPerMinute - 1) / millisPerMinute
}

// MinutesForJob returns the billable minutes of job. The job's own duration is
// preferred; without one the run's timing resource is fetched, once per job.
func MinutesForJob(ctx context.Context, job models.Job, run models.WorkflowRun, timing TimingSource) (int64, error) {
	if job.RunDurationMS != nil {
		return RoundUpMinutes(*job.RunDurationMS), nil
	}

	ms, err := timing.RunDurationMS(ctx, run)
	if err != nil {
		return 0, err
	}
	return RoundUpMinutes(ms), nil
}
