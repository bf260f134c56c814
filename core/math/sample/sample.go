package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

// maxIterations bounds rejection sampling loops. Exceeding it means the
// random source is broken, which is fatal and non-retryable.
const maxIterations = 255

// ErrMaxIterations is reported when the random source failed to produce an
// acceptable value after maxIterations draws.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Scalar returns a scalar sampled uniformly from the scalar field of the
// group. The draw is widened by the group's SafeScalarBytes before reduction
// so that the modular bias is negligible.
func Scalar(rand io.Reader, group curve.Curve) curve.Scalar {
	buf := make([]byte, group.SafeScalarBytes())
	mustReadBits(rand, buf)
	n := new(saferith.Nat).SetBytes(buf)
	return group.NewScalar().SetNat(n)
}

// ScalarNonZero samples uniformly from the non-zero scalars of the group,
// for use as encryption nonces and blinding factors.
func ScalarNonZero(rand io.Reader, group curve.Curve) curve.Scalar {
	for i := 0; i < maxIterations; i++ {
		if s := Scalar(rand, group); !s.IsZero() {
			return s
		}
	}
	panic(ErrMaxIterations)
}

// ScalarPointPair samples a fresh scalar together with its public image on
// the generator, the shape of every key pair in the engine.
func ScalarPointPair(rand io.Reader, group curve.Curve) (curve.Scalar, curve.Point) {
	s := ScalarNonZero(rand, group)
	return s, s.ActOnBase()
}
