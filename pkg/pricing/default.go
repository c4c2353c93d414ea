package pricing

import (
	"github.com/opscart/actions-usage/pkg/models"
)

// DefaultRates are GitHub's list prices per minute in USD
func DefaultRates() Rates {
	return Rates{
		models.RunnerGitHubHosted: {
			models.OSLinux:   0.008,
			models.OSWindows: 0.016,
			models.OSMacOS:   0.08,
		},
		models.RunnerSelfHosted: {
			models.OSAll: 0.008,
		},
	}
}

// NewDefaultProvider provides fallback pricing when no cost table is configured
func NewDefaultProvider() *Table {
	return &Table{
		name:  "default",
		rates: DefaultRates(),
	}
}
