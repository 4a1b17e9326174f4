package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultConfigFile is picked up from the working directory when no
// --config flag is given.
const defaultConfigFile = "crossbind.yaml"

// fileConfig mirrors crossbind.yaml. Command-line flags take
// precedence over every field.
type fileConfig struct {
	Out          string            `yaml:"out"`
	ModuleBase   string            `yaml:"moduleBase"`
	SearchPaths  []string          `yaml:"searchPaths"`
	PackageNames map[string]string `yaml:"packageNames"`
	Validators   *bool             `yaml:"validators"`
	Descriptors  []string          `yaml:"descriptors"`
}

// loadFileConfig reads the YAML config. A missing default file is not
// an error; a missing explicit --config path is.
func loadFileConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := &fileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
