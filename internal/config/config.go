// Package config loads flatintern's tokenizer settings from a project
// config file, KDL primary with a legacy TOML fallback, in the style
// internal/config/kdl_config.go uses for its own .lci.kdl files.
package config

import (
	"github.com/standardbeagle/flatintern/internal/errors"
	"github.com/standardbeagle/flatintern/internal/tokenizer"
)

// Config is the on-disk project configuration: tokenizer limits plus the
// glob patterns the watch command uses to pick files up.
type Config struct {
	MaxLineCount   int      `toml:"max_line_count"`
	MaxCellCount   int      `toml:"max_cell_count"`
	ReadBufferSize int      `toml:"read_buffer_size"`
	Include        []string `toml:"include"`
	Exclude        []string `toml:"exclude"`
}

// Default mirrors tokenizer.DefaultConfig with a permissive file glob.
func Default() Config {
	dc := tokenizer.DefaultConfig()
	return Config{
		MaxLineCount:   dc.MaxLineCount,
		MaxCellCount:   dc.MaxCellCount,
		ReadBufferSize: dc.ReadBufferSize,
		Include:        []string{"**/*.tsv", "**/*.csv"},
	}
}

// Tokenizer projects Config down to the subset tokenizer.Parse accepts.
func (c Config) Tokenizer() tokenizer.Config {
	return tokenizer.Config{
		MaxLineCount:   c.MaxLineCount,
		MaxCellCount:   c.MaxCellCount,
		ReadBufferSize: c.ReadBufferSize,
	}
}

// Validate delegates to the tokenizer config's own bounds check.
func (c Config) Validate() error {
	if err := c.Tokenizer().Validate(); err != nil {
		return err
	}
	for _, pat := range c.Include {
		if pat == "" {
			return errors.New(errors.OptionOutOfRange, "config.Validate")
		}
	}
	return nil
}
