package elgamal

import (
	"context"

	core "github.com/jskoiz/zeraprivacy/core/elgamal"
	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

type ElgamalKey interface {
	// Bytes returns the byte representation of the public half of the key.
	// Secret scalars are never exposed through serialization.
	Bytes() ([]byte, error)

	// SKI returns the serialized key identifier.
	SKI() []byte

	// Private returns true if the key holds the secret scalar.
	Private() bool

	// PublicKey returns the corresponding public-only key.
	PublicKey() ElgamalKey

	// PublicKeyRaw returns the public key point.
	PublicKeyRaw() curve.Point

	// Encrypt returns the encryption of `amount` under the public key,
	// along with the nonce used.
	Encrypt(amount uint64) (*core.Ciphertext, curve.Scalar, error)

	// Decrypt recovers the amount from a ciphertext. It requires the
	// secret scalar.
	Decrypt(ctx context.Context, ct *core.Ciphertext, opts *core.DecryptOptions) (uint64, error)

	// Zero clears the secret scalar in place.
	Zero()
}

type ElgamalKeyManager interface {
	// GenerateKey generates a new Elgamal key pair for the account.
	GenerateKey(account string) (ElgamalKey, error)

	// ImportKey imports an Elgamal key from its byte representation or
	// from an ElgamalKey instance.
	ImportKey(data interface{}, account string) (ElgamalKey, error)

	// GetKey returns the account's Elgamal key.
	GetKey(account string) (ElgamalKey, error)

	// Encrypt encrypts an amount under the account's public key.
	Encrypt(account string, amount uint64) (*core.Ciphertext, curve.Scalar, error)

	// Decrypt recovers an amount with the account's secret key.
	Decrypt(ctx context.Context, account string, ct *core.Ciphertext, opts *core.DecryptOptions) (uint64, error)
}
