package configuration

import (
	"strings"

	"github.com/pkg/errors"
)

// PrepareConfiguration loads a configuration file, dispatching on extension.
// JSON and TOML are supported.
func PrepareConfiguration(confName string) (*Configuration, error) {
	if confName == "" {
		return nil, errors.New("Empty file name")
	}
	idx := strings.LastIndex(confName, ".")
	if idx < 0 {
		return nil, errors.Errorf("Bad file name '%s'", confName)
	}
	switch confName[idx+1:] {
	case "json":
		return PrepareConfigurationJSON(confName)
	case "toml":
		return PrepareConfigurationTOML(confName)
	default:
		return nil, errors.Errorf("Not supported file format '%s'", confName[idx+1:])
	}
}
