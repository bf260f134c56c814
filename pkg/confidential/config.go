package confidential

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jskoiz/zeraprivacy/core/elgamal"
	"github.com/jskoiz/zeraprivacy/core/math/curve"
	"github.com/jskoiz/zeraprivacy/core/rangeproof"
)

// Config carries the tunable parameters of the engine. The zero value is not
// usable; start from DefaultConfig or LoadConfig.
type Config struct {
	// Curve names the prime-order group all operations run on.
	Curve string `yaml:"curve"`

	// DecryptSearchBound caps the discrete-log search when recovering
	// amounts. Ciphertexts of larger amounts fail to decrypt until the
	// bound is raised.
	DecryptSearchBound uint64 `yaml:"decrypt_search_bound"`

	// GiantStepThreshold is the bound above which decryption switches from
	// the linear walk to the baby-step giant-step search.
	GiantStepThreshold uint64 `yaml:"giant_step_threshold"`

	// ScanParallelism caps concurrent candidate checks during payment
	// scans. Zero means GOMAXPROCS.
	ScanParallelism int `yaml:"scan_parallelism"`

	// RangeProofBits is the bit bound attached to every range proof.
	RangeProofBits int `yaml:"range_proof_bits"`
}

func DefaultConfig() *Config {
	return &Config{
		Curve:              curve.Secp256k1{}.Name(),
		DecryptSearchBound: 1 << 32,
		GiantStepThreshold: 1 << 16,
		ScanParallelism:    0,
		RangeProofBits:     rangeproof.DefaultMaxBoundBits,
	}
}

// LoadConfig reads a YAML config file over the defaults, so a file only needs
// to name the parameters it changes.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "confidential: read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.WithMessage(err, "confidential: parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Group(); err != nil {
		return err
	}
	if c.DecryptSearchBound == 0 {
		return errors.New("confidential: decrypt search bound must be positive")
	}
	if c.RangeProofBits <= 0 || c.RangeProofBits > rangeproof.DefaultMaxBoundBits {
		return errors.Errorf("confidential: invalid range proof bound of %d bits", c.RangeProofBits)
	}
	return nil
}

// Group resolves the configured curve name.
func (c *Config) Group() (curve.Curve, error) {
	switch c.Curve {
	case curve.Secp256k1{}.Name():
		return curve.Secp256k1{}, nil
	default:
		return nil, errors.Errorf("confidential: unsupported curve %q", c.Curve)
	}
}

func (c *Config) decryptOptions() *elgamal.DecryptOptions {
	return &elgamal.DecryptOptions{
		MaxAmount:          c.DecryptSearchBound,
		GiantStepThreshold: c.GiantStepThreshold,
	}
}
