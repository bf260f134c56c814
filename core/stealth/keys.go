package stealth

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
	"github.com/jskoiz/zeraprivacy/core/math/sample"
)

const (
	hkdfInfoView  = "zera/stealth/view/v1"
	hkdfInfoSpend = "zera/stealth/spend/v1"
)

// KeyPair holds a secret scalar and its public image. The secret half is
// deliberately unexported and excluded from every serialization path.
type KeyPair struct {
	secret curve.Scalar
	public curve.Point
}

// NewKeyPair generates a fresh key pair on the group.
func NewKeyPair(group curve.Curve) *KeyPair {
	secret, public := sample.ScalarPointPair(rand.Reader, group)
	return &KeyPair{secret: secret, public: public}
}

// KeyPairFromScalar builds the key pair owning the given secret.
func KeyPairFromScalar(secret curve.Scalar) *KeyPair {
	return &KeyPair{secret: secret, public: secret.ActOnBase()}
}

func (kp *KeyPair) PublicKey() curve.Point {
	return kp.public
}

// Secret exposes the secret scalar to the holder. Callers must not copy it
// into logs, serialized payloads or long-lived caches.
func (kp *KeyPair) Secret() curve.Scalar {
	return kp.secret
}

// Zero clears the secret scalar in place once the holder is done with it.
func (kp *KeyPair) Zero() {
	if kp.secret != nil {
		kp.secret.Zero()
	}
}

// Keys is the recipient-held pair of key pairs behind a published
// meta-address: the view key scans for payments, the spend key recovers
// one-time spending keys.
type Keys struct {
	View  *KeyPair
	Spend *KeyPair
}

// GenerateKeys generates fresh view and spend key pairs.
func GenerateKeys(group curve.Curve) *Keys {
	return &Keys{View: NewKeyPair(group), Spend: NewKeyPair(group)}
}

// NewKeys assembles Keys from caller-supplied key pairs, for holders who
// manage key material elsewhere.
func NewKeys(view, spend *KeyPair) *Keys {
	return &Keys{View: view, Spend: spend}
}

// KeysFromSeed derives the view and spend key pairs deterministically from a
// seed, so a wallet can recover its stealth identity from backup material.
func KeysFromSeed(group curve.Curve, seed []byte) (*Keys, error) {
	view, err := scalarFromSeed(group, seed, hkdfInfoView)
	if err != nil {
		return nil, err
	}
	spend, err := scalarFromSeed(group, seed, hkdfInfoSpend)
	if err != nil {
		return nil, err
	}
	return &Keys{View: KeyPairFromScalar(view), Spend: KeyPairFromScalar(spend)}, nil
}

func scalarFromSeed(group curve.Curve, seed []byte, info string) (curve.Scalar, error) {
	buf := make([]byte, group.SafeScalarBytes())
	if _, err := io.ReadFull(hkdf.New(sha256.New, seed, nil, []byte(info)), buf); err != nil {
		return nil, errors.WithMessage(err, "stealth: seed expansion failed")
	}
	s := group.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf))
	if s.IsZero() {
		return nil, errors.New("stealth: seed derived a zero scalar")
	}
	return s, nil
}

// MetaAddress returns the two public halves for publication. The caller
// retains the private halves.
func (k *Keys) MetaAddress() *MetaAddress {
	return &MetaAddress{
		ViewPublicKey:  k.View.PublicKey(),
		SpendPublicKey: k.Spend.PublicKey(),
	}
}

// Zero clears both secret scalars.
func (k *Keys) Zero() {
	k.View.Zero()
	k.Spend.Zero()
}

// MetaAddress is the long-lived published pair of public keys letting anyone
// derive unlinkable one-time payment addresses for its owner.
type MetaAddress struct {
	ViewPublicKey  curve.Point
	SpendPublicKey curve.Point
}

func NewMetaAddress(group curve.Curve) *MetaAddress {
	return &MetaAddress{
		ViewPublicKey:  group.NewPoint(),
		SpendPublicKey: group.NewPoint(),
	}
}

// Valid returns true if both public keys are usable group elements.
func (m *MetaAddress) Valid() bool {
	return m != nil &&
		m.ViewPublicKey != nil && !m.ViewPublicKey.IsIdentity() &&
		m.SpendPublicKey != nil && !m.SpendPublicKey.IsIdentity()
}

func (MetaAddress) Domain() string {
	return "Stealth Meta Address"
}

func (m *MetaAddress) MarshalBinary() ([]byte, error) {
	view, err := m.ViewPublicKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	spend, err := m.SpendPublicKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(view, spend...), nil
}

func (m *MetaAddress) UnmarshalBinary(data []byte) error {
	if len(data) != 2*curve.PointBytes {
		return errors.Errorf("stealth: invalid meta-address length %d", len(data))
	}
	if m.ViewPublicKey == nil || m.SpendPublicKey == nil {
		return errors.New("stealth: unmarshal into uninitialized meta-address")
	}
	if err := m.ViewPublicKey.UnmarshalBinary(data[:curve.PointBytes]); err != nil {
		return err
	}
	return m.SpendPublicKey.UnmarshalBinary(data[curve.PointBytes:])
}
