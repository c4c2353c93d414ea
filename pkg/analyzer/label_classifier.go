package analyzer

import (
	"strings"

	"github.com/opscart/actions-usage/pkg/models"
)

const selfHostedMarker = "self-hosted"

// knownOS maps the runs-on labels GitHub uses for its hosted OS families
var knownOS = map[string]models.OSKey{
	"linux":   models.OSLinux,
	"windows": models.OSWindows,
	"macos":   models.OSMacOS,
}

// Classify determines runner type and OS of a job from its labels.
//
// Any label containing "self-hosted" makes the job self-hosted with OS "all",
// whatever OS labels are also present. Otherwise the first label naming a known
// OS wins, and jobs without a recognizable label count as Linux.
func Classify(labels []string) models.ClassificationKey {
	for _, label := range labels {
		if strings.Contains(label, selfHostedMarker) {
			return models.ClassificationKey{RunnerType: models.RunnerSelfHosted, OS: models.OSAll}
		}
	}

	key := models.ClassificationKey{RunnerType: models.RunnerGitHubHosted, OS: models.OSLinux}
	for _, label := range labels {
		if os, ok := knownOS[label]; ok {
			key.OS = os
			break
		}
	}
	return key
}
