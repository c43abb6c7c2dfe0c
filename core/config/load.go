package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads a configuration file from fs. If given a directory, the
// configuration file is looked up inside it. A missing file yields the
// built in defaults.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	if info, err := fs.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ConfigurationName)
	}

	contents, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	out := defaultConfig()
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
