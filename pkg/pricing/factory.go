package pricing

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

// NewProvider loads the cost table at path, falling back to the default
// rates when the file does not exist
func NewProvider(path string, logger logrus.FieldLogger) (Provider, error) {
	table, err := Load(path)
	if err == nil {
		logger.WithField("path", path).Debug("Loaded cost table")
		return table, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.WithField("path", path).Warning("Cost table not found, using default rates")
		return NewDefaultProvider(), nil
	}
	return nil, err
}
