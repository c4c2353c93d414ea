package models

import "fmt"

// Breakdown represents the granularity usage is grouped by
type Breakdown string

const (
	BreakdownNone     Breakdown = "none"
	BreakdownRepo     Breakdown = "repo"
	BreakdownWorkflow Breakdown = "workflow"
)

// BreakdownFor resolves the CLI selectors; by-workflow wins over by-repo
func BreakdownFor(byRepo, byWorkflow bool) Breakdown {
	switch {
	case byWorkflow:
		return BreakdownWorkflow
	case byRepo:
		return BreakdownRepo
	default:
		return BreakdownNone
	}
}

// ParseBreakdown parses a breakdown name
func ParseBreakdown(s string) (Breakdown, error) {
	switch b := Breakdown(s); b {
	case BreakdownNone, BreakdownRepo, BreakdownWorkflow:
		return b, nil
	case "":
		return BreakdownNone, nil
	default:
		return "", fmt.Errorf("unknown breakdown: %s", s)
	}
}

// IncludesRepository reports whether keys of this breakdown carry a repository
func (b Breakdown) IncludesRepository() bool {
	return b == BreakdownRepo || b == BreakdownWorkflow
}

// IncludesWorkflow reports whether keys of this breakdown carry a workflow
func (b Breakdown) IncludesWorkflow() bool {
	return b == BreakdownWorkflow
}

// AggregationKey is the key usage minutes are accumulated under.
//
// It is a tagged variant: Breakdown selects the shape, Repository is set only
// for repo and workflow breakdowns and Workflow only for the workflow
// breakdown. Build keys with Breakdown.Key so unused fields stay empty.
type AggregationKey struct {
	Breakdown  Breakdown
	Repository string
	Workflow   string
	Class      ClassificationKey
}

// Key builds the aggregation key for this breakdown
func (b Breakdown) Key(repository, workflow string, class ClassificationKey) AggregationKey {
	key := AggregationKey{Breakdown: b, Class: class}
	if b.IncludesRepository() {
		key.Repository = repository
	}
	if b.IncludesWorkflow() {
		key.Workflow = workflow
	}
	return key
}
