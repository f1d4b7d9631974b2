package gram

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfig represents a gram.toml project configuration file.
type ProjectConfig struct {
	// Grammar is the path to the grammar file, relative to gram.toml.
	Grammar string `toml:"grammar"`

	// AllReadings makes the composer enumerate every scope ordering by
	// default instead of producing one reading per parse.
	AllReadings bool `toml:"all_readings"`
}

// LoadProjectConfig loads a gram.toml file from the given path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &config, nil
}

// FindProjectConfig searches for a gram.toml file starting from dir and
// walking up to parent directories. Returns the path to gram.toml and the
// parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, "gram.toml")
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}
