package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents a prime-order elliptic-curve group. All higher layers of
// the engine operate on this abstraction and never on a concrete curve
// implementation directly.
type Curve interface {
	// NewPoint returns the identity element of the group.
	NewPoint() Point
	// NewBasePoint returns the canonical generator G.
	NewBasePoint() Point
	// NewScalar returns the zero scalar.
	NewScalar() Scalar
	// Name uniquely identifies the curve for serialization purposes.
	Name() string
	// ScalarBits is the bit size of the scalar field.
	ScalarBits() int
	// SafeScalarBytes is the number of random bytes needed to sample a
	// scalar with negligible bias after reduction modulo the group order.
	SafeScalarBytes() int
	// Order returns the order of the group as a modulus for wide reduction.
	Order() *saferith.Modulus
}

// Scalar is an element of the scalar field of the curve.
//
// Arithmetic methods return fresh scalars and leave their operands untouched,
// except for the Set* constructors and Zero, which mutate the receiver.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler

	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Invert() Scalar
	Equal(Scalar) bool
	IsZero() bool

	// SetNat sets the receiver to a number reduced modulo the group order.
	SetNat(*saferith.Nat) Scalar
	// SetUint64 sets the receiver to a small integer, such as a token amount.
	SetUint64(uint64) Scalar
	// Zero clears the receiver in place. Holders of secret scalars call
	// this when the key goes out of scope.
	Zero()

	// Act computes the scalar multiplication of the given point.
	Act(Point) Point
	// ActOnBase computes the scalar multiplication of the generator G.
	ActOnBase() Point
}

// Point is an element of the curve group. Arithmetic methods return fresh
// points and leave their operands untouched. The identity element serializes
// to an all-zero encoding.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler

	Curve() Curve
	Add(Point) Point
	Sub(Point) Point
	Negate() Point
	Equal(Point) bool
	IsIdentity() bool
}
