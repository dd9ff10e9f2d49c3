package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	cfg := Default()
	cfg.SampleSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.FaultRate = 200
	assert.Error(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oddgossip.toml")
	require.NoError(t, os.WriteFile(path, []byte("node_count = 7\nsample_size = 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.NodeCount)
	assert.Equal(t, 3, cfg.SampleSize)
	assert.Equal(t, Default().WalletFan, cfg.WalletFan)
}
