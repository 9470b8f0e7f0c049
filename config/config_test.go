package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, DefaultGCTimeMillis, cfg.GCTimeMillis)
	require.Equal(t, 0, cfg.SchedulerBatchLimit)
}

func TestLoadEmptyReturnsDefault(t *testing.T) {
	cfg, result := Load(nil)
	require.True(t, result.OK())
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	cfg, result := Load([]byte(`{
		// trailing comma and comments are fine, this is jsonc
		"gcTimeMillis": 9000,
	}`))
	require.True(t, result.OK())
	require.Equal(t, 9000, cfg.GCTimeMillis)
	require.Equal(t, 0, cfg.SchedulerBatchLimit)
}

func TestLoadRejectsNegativeValues(t *testing.T) {
	cfg, result := Load([]byte(`{"schedulerBatchLimit": -1}`))
	require.False(t, result.OK())
	require.Equal(t, Default().SchedulerBatchLimit, cfg.SchedulerBatchLimit)
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	cfg, result := Load([]byte(`not json at all`))
	require.False(t, result.OK())
	require.Equal(t, Default(), cfg)
}

func TestGCTimeConvertsMillisToDuration(t *testing.T) {
	cfg := Config{GCTimeMillis: 1500}
	require.Equal(t, 1500000000, int(cfg.GCTime()))
}

func TestLoadFileMissingReturnsDefaultOK(t *testing.T) {
	cfg, result := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.jsonc"))
	require.True(t, result.OK())
	require.Equal(t, Default(), cfg)
}
