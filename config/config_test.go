package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := `
scanners:
  groups: [ruby, messaging]
  disabled: [sidekiq-workers]
scan:
  root: /repo
  excludes: ["vendor/**"]
`
	cfg, warning := Parse([]byte(doc))
	require.NoError(t, warning)
	assert.Equal(t, []string{"ruby", "messaging"}, cfg.Scanners.Groups)
	assert.Equal(t, []string{"sidekiq-workers"}, cfg.Scanners.Disabled)
	assert.Equal(t, "/repo", cfg.Scan.Root)
	assert.Equal(t, []string{"vendor/**"}, cfg.Scan.Excludes)
	assert.Greater(t, cfg.Scan.Workers, 0)
}

func TestParseMalformedFallsBackToDefaults(t *testing.T) {
	cfg, warning := Parse([]byte("scanners: [not: a: map"))
	assert.Error(t, warning)
	assert.Empty(t, cfg.Scanners.Groups)
	assert.Equal(t, ".", cfg.Scan.Root)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, warning := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, warning)
	assert.Empty(t, cfg.Scanners.Groups)
	assert.Empty(t, cfg.Scan.Excludes)
}
