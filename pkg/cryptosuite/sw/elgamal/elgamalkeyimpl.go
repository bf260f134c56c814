package elgamal

import (
	"context"
	"crypto/sha256"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	core "github.com/jskoiz/zeraprivacy/core/elgamal"
	"github.com/jskoiz/zeraprivacy/core/math/curve"
	cs_elgamal "github.com/jskoiz/zeraprivacy/pkg/common/cryptosuite/elgamal"
)

var (
	ErrInvalidKey = errors.New("elgamal: invalid key")
	ErrPublicOnly = errors.New("elgamal: operation requires the secret key")
)

type ElgamalKey struct {
	secretKey curve.Scalar
	publicKey curve.Point
	group     curve.Curve
}

type rawElgamalKey struct {
	Group  string
	Secret []byte
	Public []byte
}

// Bytes serializes the public half only. Secret scalars never leave the key
// through this path; vault persistence uses the unexported vaultBytes.
func (key ElgamalKey) Bytes() ([]byte, error) {
	raw := &rawElgamalKey{Group: key.group.Name()}

	pub, err := key.publicKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	raw.Public = pub

	return cbor.Marshal(raw)
}

func (key ElgamalKey) vaultBytes() ([]byte, error) {
	raw := &rawElgamalKey{Group: key.group.Name()}

	pub, err := key.publicKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	raw.Public = pub

	if key.Private() {
		priv, err := key.secretKey.MarshalBinary()
		if err != nil {
			return nil, err
		}
		raw.Secret = priv
	}
	return cbor.Marshal(raw)
}

func (key ElgamalKey) SKI() []byte {
	raw, err := key.publicKey.MarshalBinary()
	if err != nil {
		return nil
	}
	hash := sha256.New()
	hash.Write(raw)
	return hash.Sum(nil)
}

func (key ElgamalKey) Private() bool {
	return key.secretKey != nil
}

func (key ElgamalKey) PublicKey() cs_elgamal.ElgamalKey {
	return ElgamalKey{nil, key.publicKey, key.group}
}

func (key ElgamalKey) PublicKeyRaw() curve.Point {
	return key.publicKey
}

func (key ElgamalKey) Encrypt(amount uint64) (*core.Ciphertext, curve.Scalar, error) {
	ct, nonce := core.Encrypt(key.publicKey, amount)
	return ct, nonce, nil
}

func (key ElgamalKey) Decrypt(ctx context.Context, ct *core.Ciphertext, opts *core.DecryptOptions) (uint64, error) {
	if !key.Private() {
		return 0, ErrPublicOnly
	}
	return core.Decrypt(ctx, key.secretKey, ct, opts)
}

func (key ElgamalKey) Zero() {
	if key.secretKey != nil {
		key.secretKey.Zero()
	}
}

func fromBytes(data []byte) (ElgamalKey, error) {
	key := ElgamalKey{}

	raw := &rawElgamalKey{}
	if err := cbor.Unmarshal(data, raw); err != nil {
		return ElgamalKey{}, err
	}

	var group curve.Curve
	switch raw.Group {
	case "secp256k1":
		group = curve.Secp256k1{}
	default:
		return ElgamalKey{}, ErrInvalidKey
	}
	key.group = group

	if len(raw.Secret) > 0 {
		secret := group.NewScalar()
		if err := secret.UnmarshalBinary(raw.Secret); err != nil {
			return ElgamalKey{}, err
		}
		key.secretKey = secret
	}

	pub := group.NewPoint()
	if err := pub.UnmarshalBinary(raw.Public); err != nil {
		return ElgamalKey{}, err
	}
	key.publicKey = pub

	return key, nil
}
