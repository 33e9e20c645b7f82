package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKDL_Missing(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDL_Parses(t *testing.T) {
	dir := t.TempDir()
	content := `
max_line_count 100000
max_cell_count 2000000
read_buffer_size 8192
include "**/*.tsv" "**/*.csv"
exclude "**/*.bak"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, kdlFileName), []byte(content), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 100000, cfg.MaxLineCount)
	assert.Equal(t, 2000000, cfg.MaxCellCount)
	assert.Equal(t, 8192, cfg.ReadBufferSize)
	assert.Equal(t, []string{"**/*.tsv", "**/*.csv"}, cfg.Include)
	assert.Equal(t, []string{"**/*.bak"}, cfg.Exclude)
}

func TestLoadTOML_Parses(t *testing.T) {
	dir := t.TempDir()
	content := "max_line_count = 50\nmax_cell_count = 500\nread_buffer_size = 4096\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, tomlFileName), []byte(content), 0o644))

	cfg, err := LoadTOML(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 50, cfg.MaxLineCount)
}

func TestLoad_FallsBackToDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.MaxLineCount = -1
	require.Error(t, cfg.Validate())
}
