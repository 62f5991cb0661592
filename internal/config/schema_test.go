package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-labs/oceanstat/internal/config"
)

func TestSchema_Embedded(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, config.Schema())
}

func TestValidateFile_Conforming(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `case:
  name: tidecase
  run_dir: /data/tidecase/run
diagnostics:
  moc: true
  forcing_vars:
    - wfo
    - hfds
runtime:
  workers: 2
report:
  theme: light
`)

	issues, err := config.ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateFile_EmptyFile(t *testing.T) {
	t.Parallel()

	issues, err := config.ValidateFile(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateFile_ReportsIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "negative workers", content: "runtime:\n  workers: -1\n"},
		{name: "unknown theme", content: "report:\n  theme: blue\n"},
		{name: "unknown section", content: "plotting:\n  dpi: 300\n"},
		{name: "wrong type", content: "case:\n  start_year: first\n"},
		{name: "unknown level", content: "logging:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			issues, err := config.ValidateFile(writeConfig(t, tt.content))
			require.NoError(t, err)
			assert.NotEmpty(t, issues)

			for _, issue := range issues {
				assert.NotEmpty(t, issue.String())
			}
		})
	}
}

func TestValidateFile_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.ValidateFile(writeConfig(t, "case: [unclosed"))
	require.Error(t, err)
}

func TestValidateFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.ValidateFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
