package pricing

import (
	"github.com/opscart/actions-usage/pkg/models"
)

// Provider defines the interface for per-minute runner pricing
type Provider interface {
	// Rate returns the cost of one minute for class, 0 when unknown
	Rate(class models.ClassificationKey) float64
	Name() string
}

// Cost prices minutes of class with p
func Cost(p Provider, class models.ClassificationKey, minutes int64) float64 {
	return p.Rate(class) * float64(minutes)
}
