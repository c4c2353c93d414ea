package analyzer

import (
	"cmp"
	"slices"
	"sync"

	"github.com/opscart/actions-usage/pkg/models"
)

// Usage accumulates minutes for a single repository task. It is not safe for
// concurrent use; tasks merge it into a Summary when done.
type Usage map[models.AggregationKey]int64

// Add accumulates minutes under key, creating the entry if needed
func (u Usage) Add(key models.AggregationKey, minutes int64) {
	u[key] += minutes
}

// Entry is one aggregated line of a Summary
type Entry struct {
	Key     models.AggregationKey
	Minutes int64
}

// Summary is the usage total shared by all tasks
type Summary struct {
	mu      sync.Mutex
	minutes map[models.AggregationKey]int64
}

// NewSummary creates an empty summary
func NewSummary() *Summary {
	return &Summary{minutes: make(map[models.AggregationKey]int64)}
}

// Merge adds every entry of u to the summary
func (s *Summary) Merge(u Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, minutes := range u {
		s.minutes[key] += minutes
	}
}

// Minutes returns the minutes recorded under key
func (s *Summary) Minutes(key models.AggregationKey) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	minutes, ok := s.minutes[key]
	return minutes, ok
}

// Len returns the number of keys
func (s *Summary) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.minutes)
}

// Snapshot returns a copy of the accumulated minutes
func (s *Summary) Snapshot() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Usage, len(s.minutes))
	for key, minutes := range s.minutes {
		out[key] = minutes
	}
	return out
}

// Entries returns the summary sorted by repository, workflow, runner type and OS
func (s *Summary) Entries() []Entry {
	snapshot := s.Snapshot()

	entries := make([]Entry, 0, len(snapshot))
	for key, minutes := range snapshot {
		entries = append(entries, Entry{Key: key, Minutes: minutes})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(a.Key.Repository, b.Key.Repository),
			cmp.Compare(a.Key.Workflow, b.Key.Workflow),
			cmp.Compare(a.Key.Class.RunnerType, b.Key.Class.RunnerType),
			cmp.Compare(a.Key.Class.OS, b.Key.Class.OS),
		)
	})
	return entries
}

// TotalMinutes sums all entries
func (s *Summary) TotalMinutes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, minutes := range s.minutes {
		total += minutes
	}
	return total
}
