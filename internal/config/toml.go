package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlFileName is the legacy format, kept for projects that predate the
// KDL config and never migrated.
const tomlFileName = ".flatintern.toml"

// LoadTOML loads projectRoot/.flatintern.toml. It returns (nil, nil) when
// the file does not exist.
func LoadTOML(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, tomlFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Load tries the KDL config first, then the legacy TOML one, falling back
// to Default when neither is present.
func Load(projectRoot string) (Config, error) {
	if cfg, err := LoadKDL(projectRoot); err != nil {
		return Config{}, err
	} else if cfg != nil {
		return *cfg, nil
	}

	if cfg, err := LoadTOML(projectRoot); err != nil {
		return Config{}, err
	} else if cfg != nil {
		return *cfg, nil
	}

	return Default(), nil
}
