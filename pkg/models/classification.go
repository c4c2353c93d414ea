package models

// RunnerType tells who provides the machine a job ran on
type RunnerType string

const (
	RunnerGitHubHosted RunnerType = "github_hosted"
	RunnerSelfHosted   RunnerType = "self_hosted"
)

// OSKey is the operating system family a job ran under
type OSKey string

const (
	OSLinux   OSKey = "linux"
	OSWindows OSKey = "windows"
	OSMacOS   OSKey = "macos"

	// OSAll is used for self-hosted runners, where the OS is not billed separately
	OSAll OSKey = "all"
)

// ClassificationKey identifies the billing class of a job
type ClassificationKey struct {
	RunnerType RunnerType
	OS         OSKey
}

func (k ClassificationKey) String() string {
	return string(k.RunnerType) + "/" + string(k.OS)
}
