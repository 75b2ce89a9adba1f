package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"vincula/internal/config"
)

// LoadConfig reads a YAML config file. Used when CONFIG_PATH is set;
// otherwise config.Load reads the environment.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
