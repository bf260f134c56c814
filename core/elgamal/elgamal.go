// Package elgamal implements twisted-ElGamal encryption of 64-bit token
// amounts. The message is encoded in the exponent, which keeps ciphertexts
// additively homomorphic at the cost of a discrete-log search on decryption.
package elgamal

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
	"github.com/jskoiz/zeraprivacy/core/math/sample"
)

type (
	PublicKey = curve.Point
	SecretKey = curve.Scalar
	Nonce     = curve.Scalar
)

var (
	// ErrInvalidAmountRange is returned when an amount lies outside
	// [0, 2^64-1].
	ErrInvalidAmountRange = errors.New("elgamal: amount outside valid range")

	// ErrDecryptionFailed is returned when the discrete-log search did not
	// find the amount within the configured bound. This is a scalability
	// ceiling, not a correctness bound: the caller may retry with a wider
	// bound.
	ErrDecryptionFailed = errors.New("elgamal: amount not found within search bound")
)

// ValidateAmount reports whether a big integer amount fits the valid range
// [0, 2^64-1]. Fixed-width uint64 amounts are valid by construction.
func ValidateAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 64 {
		return ErrInvalidAmountRange
	}
	return nil
}

// GenerateKeypair samples a fresh secret scalar and its public image on the
// generator. It fails only if the random source is exhausted, which the
// sampling layer treats as fatal.
func GenerateKeypair(group curve.Curve) (SecretKey, PublicKey) {
	return sample.ScalarPointPair(rand.Reader, group)
}

// Encrypt returns the encryption of `amount` as (C1=r⋅G, C2=amount⋅G + r⋅pk)
// for a fresh random nonce r, as well as the nonce itself. Encryption is
// probabilistic: the same amount yields a different ciphertext on every call.
func Encrypt(public PublicKey, amount uint64) (*Ciphertext, Nonce) {
	group := public.Curve()
	nonce := sample.ScalarNonZero(rand.Reader, group)
	m := group.NewScalar().SetUint64(amount)
	c1 := nonce.ActOnBase()
	c2 := m.ActOnBase().Add(nonce.Act(public))
	return &Ciphertext{C1: c1, C2: c2}, nonce
}

// EncryptBig is Encrypt for callers holding an arbitrary-precision amount.
// It rejects negative amounts and amounts above 2^64-1 with
// ErrInvalidAmountRange.
func EncryptBig(public PublicKey, amount *big.Int) (*Ciphertext, Nonce, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, nil, err
	}
	ct, nonce := Encrypt(public, amount.Uint64())
	return ct, nonce, nil
}

// Decrypt recovers the amount from a ciphertext by computing
// M = C2 - sk⋅C1 = amount⋅G and searching for the discrete log of M base G
// within the bound given by opts. A nil opts uses DefaultDecryptOptions.
//
// The search is CPU-bound; cancellation through ctx is best-effort and
// leaves no partial state.
func Decrypt(ctx context.Context, secret SecretKey, ct *Ciphertext, opts *DecryptOptions) (uint64, error) {
	if secret == nil || ct == nil || ct.C1 == nil || ct.C2 == nil {
		return 0, errors.New("elgamal: decrypt on nil input")
	}
	if opts == nil {
		opts = DefaultDecryptOptions()
	}

	target := ct.C2.Sub(secret.Act(ct.C1))
	return dlog(ctx, target, secret.Curve(), opts)
}
