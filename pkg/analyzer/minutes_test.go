package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/actions-usage/pkg/models"
)

func TestRoundUpMinutes(t *testing.T) {
	tests := []struct {
		ms       int64
		expected int64
	}{
		{ms: -5, expected: 0},
		{ms: 0, expected: 0},
		{ms: 1, expected: 1},
		{ms: 6_000, expected: 1},
		{ms: 59_999, expected: 1},
		{ms: 60_000, expected: 1},
		{ms: 60_001, expected: 2},
		{ms: 150_000, expected: 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RoundUpMinutes(tt.ms), "ms=%d", tt.ms)
	}
}

type timingFunc func(ctx context.Context, run models.WorkflowRun) (int64, error)

func (f timingFunc) RunDurationMS(ctx context.Context, run models.WorkflowRun) (int64, error) {
	return f(ctx, run)
}

func TestMinutesForJob(t *testing.T) {
	run := models.WorkflowRun{ID: 42}

	t.Run("job duration preferred", func(t *testing.T) {
		timing := timingFunc(func(context.Context, models.WorkflowRun) (int64, error) {
			t.Fatal("timing resource must not be fetched")
			return 0, nil
		})

		minutes, err := MinutesForJob(context.Background(), models.Job{RunDurationMS: ms(120_001)}, run, timing)
		require.NoError(t, err)
		assert.Equal(t, int64(3), minutes)
	})

	t.Run("run timing fallback", func(t *testing.T) {
		var got int64
		timing := timingFunc(func(_ context.Context, r models.WorkflowRun) (int64, error) {
			got = r.ID
			return 30_000, nil
		})

		minutes, err := MinutesForJob(context.Background(), models.Job{}, run, timing)
		require.NoError(t, err)
		assert.Equal(t, int64(1), minutes)
		assert.Equal(t, int64(42), got)
	})

	t.Run("fallback error", func(t *testing.T) {
		boom := errors.New("boom")
		timing := timingFunc(func(context.Context, models.WorkflowRun) (int64, error) {
			return 0, boom
		})

		_, err := MinutesForJob(context.Background(), models.Job{}, run, timing)
		assert.ErrorIs(t, err, boom)
	})
}
