package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opscart/actions-usage/pkg/models"
)

// Rates maps runner type to OS to cost per minute
type Rates map[models.RunnerType]map[models.OSKey]float64

// Table is a Provider backed by a static rate table
type Table struct {
	name  string
	rates Rates
}

func NewTable(name string, rates Rates) (*Table, error) {
	for runnerType, byOS := range rates {
		for osKey, rate := range byOS {
			if rate < 0 {
				return nil, fmt.Errorf("negative rate %v for %s/%s", rate, runnerType, osKey)
			}
		}
	}
	return &Table{name: name, rates: rates}, nil
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Rate(class models.ClassificationKey) float64 {
	return t.rates[class.RunnerType][class.OS]
}

// Load reads a cost table from a YAML file shaped as runner type -> OS -> rate.
// A missing file is reported with an error wrapping os.ErrNotExist.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cost table %q: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a YAML cost table. name identifies the table in reports.
func Parse(name string, data []byte) (*Table, error) {
	var rates Rates
	if err := yaml.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("parse cost table %q: %w", name, err)
	}
	if rates == nil {
		return nil, fmt.Errorf("cost table %q is empty", name)
	}

	table, err := NewTable(name, rates)
	if err != nil {
		return nil, fmt.Errorf("invalid cost table %q: %w", name, err)
	}
	return table, nil
}
