package confidential

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	group, err := cfg.Group()
	require.NoError(t, err)
	assert.Equal(t, "secp256k1", group.Name())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decrypt_search_bound: 1024\nrange_proof_bits: 32\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(1024), cfg.DecryptSearchBound)
	assert.Equal(t, 32, cfg.RangeProofBits)

	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultConfig().Curve, cfg.Curve)
	assert.Equal(t, DefaultConfig().GiantStepThreshold, cfg.GiantStepThreshold)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("curve: p-256\n"), 0o600))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	malformed := filepath.Join(t.TempDir(), "malformed.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("curve: [\n"), 0o600))
	_, err = LoadConfig(malformed)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DecryptSearchBound = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RangeProofBits = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RangeProofBits = 128
	assert.Error(t, cfg.Validate())
}
