package models

import "fmt"

// UnknownWorkflow is used when a run carries no workflow name
const UnknownWorkflow = "(unknown workflow)"

// Repository represents a GitHub repository owned by the authenticated user
type Repository struct {
	Owner string
	Name  string
	Fork  bool
}

// FullName returns owner/name
func (r Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// WorkflowRun represents a single run of a workflow
type WorkflowRun struct {
	Repository Repository
	ID         int64
	Name       string

	// URL is the API locator of the run; its timing resource lives at URL + "/timing"
	URL string
}

// TimingURL returns the run's timing resource
func (r WorkflowRun) TimingURL() string {
	return r.URL + "/timing"
}

// Job represents a job within a workflow run
type Job struct {
	ID     int64
	Name   string
	Labels []string

	// RunDurationMS is nil when the API does not report job-level timing
	RunDurationMS *int64
}
