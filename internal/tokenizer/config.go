package tokenizer

import (
	"github.com/standardbeagle/flatintern/internal/buffer"
	"github.com/standardbeagle/flatintern/internal/errors"
)

// Config is the tokenizer's configuration surface, spec.md §4.4: exactly
// three knobs, nothing else.
type Config struct {
	// MaxLineCount bounds data lines (the header is never counted against
	// it).
	MaxLineCount int
	// MaxCellCount bounds data cells (the header is never counted against
	// it).
	MaxCellCount int
	// ReadBufferSize is the input buffer's capacity. Zero selects
	// buffer.MinCapacity.
	ReadBufferSize int
}

// DefaultConfig returns a Config with generous caps suitable for most
// callers; override the fields that matter.
func DefaultConfig() Config {
	return Config{
		MaxLineCount:   1 << 20,
		MaxCellCount:   1 << 24,
		ReadBufferSize: buffer.MinCapacity,
	}
}

// Validate checks the bounds spec.md §7 assigns to kind OptionOutOfRange.
func (c Config) Validate() error {
	if c.MaxLineCount < 0 || c.MaxCellCount < 0 {
		return errors.New(errors.OptionOutOfRange, "tokenizer.Config.Validate")
	}
	if c.ReadBufferSize != 0 && c.ReadBufferSize < buffer.MinCapacity {
		return errors.New(errors.OptionOutOfRange, "tokenizer.Config.Validate")
	}
	return nil
}

func (c Config) bufferSize() int {
	if c.ReadBufferSize == 0 {
		return buffer.MinCapacity
	}
	return c.ReadBufferSize
}
