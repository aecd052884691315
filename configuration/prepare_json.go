package configuration

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// PrepareConfigurationJSON reads the streaming engine configuration from a
// JSON file
func PrepareConfigurationJSON(fname string) (*Configuration, error) {
	contents, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read configuration file '%s'", fname)
	}
	cfg := &Configuration{}
	if err := json.Unmarshal(contents, cfg); err != nil {
		return nil, errors.Wrapf(err, "Can't unmarshal configuration file '%s'", fname)
	}
	postProcessDefaults(cfg)
	return cfg, nil
}
