package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration file into dir, creating
// the directory when needed. An existing file is left untouched.
func Initialize(fs afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Printf("Found existing configuration: %s", path)
		return Load(fs, path)
	}

	if err := afero.WriteFile(fs, path, defaultConfigData, 0o644); err != nil {
		return nil, fmt.Errorf("couldn't write configuration: %w", err)
	}
	logger.Printf("Created configuration: %s", path)

	return defaultConfig(), nil
}
