// Package stealth implements one-time payment addresses. A sender combines a
// fresh ephemeral key with the recipient's published meta-address to derive a
// destination only the recipient can link to itself, and only the recipient
// can spend from.
package stealth

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/jskoiz/zeraprivacy/core/hash"
	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

var (
	// ErrInvalidMetaAddress is returned when a meta-address fails basic
	// validation.
	ErrInvalidMetaAddress = errors.New("stealth: invalid meta-address")

	// ErrForeignPayment is returned when a payment does not belong to the
	// keys attempting to spend it.
	ErrForeignPayment = errors.New("stealth: payment does not belong to these keys")
)

// EphemeralKey is a single-use key pair drawn per payment. The public half is
// published alongside the payment; the secret half exists only on the sender
// side and is discarded after use.
type EphemeralKey struct {
	secret curve.Scalar
	public curve.Point
}

// NewEphemeralKey draws a fresh ephemeral key pair.
func NewEphemeralKey(group curve.Curve) *EphemeralKey {
	kp := NewKeyPair(group)
	return &EphemeralKey{secret: kp.secret, public: kp.public}
}

// EphemeralFromPublic wraps an observed ephemeral public key. The resulting
// key has no secret half and can only be used for scanning and checking.
func EphemeralFromPublic(public curve.Point) *EphemeralKey {
	return &EphemeralKey{public: public}
}

func (e *EphemeralKey) PublicKey() curve.Point {
	return e.public
}

// Discard zeroes the secret half. Senders call this after the payment has
// been broadcast.
func (e *EphemeralKey) Discard() {
	if e.secret != nil {
		e.secret.Zero()
		e.secret = nil
	}
}

// Address is a one-time stealth address P = spendPub + H(shared)⋅G together
// with the view tag that speeds up scanning.
type Address struct {
	Point   curve.Point
	ViewTag byte
}

// String renders the address point in base58 for logs and UIs.
func (a *Address) String() string {
	raw, err := a.Point.MarshalBinary()
	if err != nil {
		return ""
	}
	return base58.Encode(raw)
}

// GenerateAddress derives a one-time address for the meta-address owner. If
// eph is nil a fresh ephemeral key is drawn. The returned ephemeral key's
// public half must be published alongside the payment; the caller should
// Discard the secret half once done.
func GenerateAddress(meta *MetaAddress, eph *EphemeralKey) (*Address, *EphemeralKey, error) {
	if !meta.Valid() {
		return nil, nil, ErrInvalidMetaAddress
	}
	if eph == nil {
		eph = NewEphemeralKey(meta.ViewPublicKey.Curve())
	}
	if eph.secret == nil {
		return nil, nil, errors.New("stealth: ephemeral key is missing its secret half")
	}

	shared := eph.secret.Act(meta.ViewPublicKey)
	offset, tag := deriveOffset(shared)
	point := meta.SpendPublicKey.Add(offset.ActOnBase())
	return &Address{Point: point, ViewTag: tag}, eph, nil
}

// Payment links an on-ledger destination to the ephemeral key that produced
// it. Only the recipient can establish this linkage, by scanning.
type Payment struct {
	Address            curve.Point
	EphemeralPublicKey curve.Point
	ViewTag            byte
}

// DeriveSpendingKey recomputes the hash offset of a discovered payment and
// adds it to the spend secret, yielding the one-time key pair able to spend
// from the stealth address. It fails with ErrForeignPayment when the payment
// was not derived from these keys' meta-address.
func (k *Keys) DeriveSpendingKey(payment *Payment) (*KeyPair, error) {
	if payment == nil || payment.Address == nil || payment.EphemeralPublicKey == nil {
		return nil, errors.New("stealth: derive spending key on nil payment")
	}

	shared := k.View.Secret().Act(payment.EphemeralPublicKey)
	offset, _ := deriveOffset(shared)
	kp := KeyPairFromScalar(k.Spend.Secret().Add(offset))
	if !kp.PublicKey().Equal(payment.Address) {
		kp.Zero()
		return nil, ErrForeignPayment
	}
	return kp, nil
}

// VerifyAddress recomputes the expected one-time address from the
// meta-address and the ephemeral key and compares it to the claimed address.
// The full recomputation needs the ephemeral secret, so only the original
// sender can run it; holders of the public half alone fall back to the
// structural checks of CheckAddress.
//
// A successful verification proves correct derivation, not ownership: only
// DeriveSpendingKey demonstrates the ability to spend.
func VerifyAddress(address curve.Point, meta *MetaAddress, eph *EphemeralKey) bool {
	if address == nil || eph == nil {
		return false
	}
	if eph.secret == nil {
		return CheckAddress(address, meta, eph.public)
	}
	derived, _, err := GenerateAddress(meta, eph)
	if err != nil {
		return false
	}
	return derived.Point.Equal(address)
}

// CheckAddress performs the public-side validity checks possible without any
// secret: the points must be usable group elements. It cannot confirm the
// derivation and never implies ownership.
func CheckAddress(address curve.Point, meta *MetaAddress, ephemeralPublic curve.Point) bool {
	return address != nil && !address.IsIdentity() &&
		meta.Valid() &&
		ephemeralPublic != nil && !ephemeralPublic.IsIdentity()
}

// deriveOffset hashes an ECDH shared point into the additive key offset and
// the one-byte view tag. Both sides of a payment derive identical values.
func deriveOffset(shared curve.Point) (curve.Scalar, byte) {
	group := shared.Curve()
	h := hash.New(hash.BytesWithDomain{TheDomain: "zera/stealth/shared-secret", Bytes: nil})
	_ = h.WriteAny(shared)

	digest := h.Digest()
	buf := make([]byte, group.SafeScalarBytes()+1)
	if _, err := io.ReadFull(digest, buf); err != nil {
		panic(errors.WithMessage(err, "stealth: internal hash failure"))
	}
	offset := group.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf[:group.SafeScalarBytes()]))
	return offset, buf[len(buf)-1]
}
