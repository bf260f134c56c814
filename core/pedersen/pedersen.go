// Package pedersen implements Pedersen commitments over a prime-order group:
// C = v⋅G + r⋅H for independent generators G and H. Commitments are hiding,
// binding and additively homomorphic, which lets balances be combined without
// revealing them.
package pedersen

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
	"github.com/jskoiz/zeraprivacy/core/math/sample"
)

// ErrInvalidAmountRange is returned when an amount lies outside [0, 2^64-1].
var ErrInvalidAmountRange = errors.New("pedersen: amount outside valid range")

// Blinding is the random scalar hiding the committed amount.
type Blinding = curve.Scalar

// Commitment is a single curve point committing to an amount.
type Commitment struct {
	C curve.Point
}

// NewBlinding samples a fresh non-zero blinding factor.
func NewBlinding(group curve.Curve) Blinding {
	return sample.ScalarNonZero(rand.Reader, group)
}

// Commit computes C = amount⋅G + blinding⋅H. The engine retains no state
// between calls.
func Commit(amount uint64, blinding Blinding) *Commitment {
	group := blinding.Curve()
	v := group.NewScalar().SetUint64(amount)
	return &Commitment{C: v.ActOnBase().Add(blinding.Act(GeneratorH(group)))}
}

// CommitBig is Commit for callers holding an arbitrary-precision amount. It
// rejects amounts outside [0, 2^64-1] with ErrInvalidAmountRange.
func CommitBig(amount *big.Int, blinding Blinding) (*Commitment, error) {
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 64 {
		return nil, ErrInvalidAmountRange
	}
	return Commit(amount.Uint64(), blinding), nil
}

// Verify recomputes the commitment from the claimed amount and blinding and
// compares by equality. It returns false on any mismatch and never fails.
func (c *Commitment) Verify(amount uint64, blinding Blinding) bool {
	if c == nil || c.C == nil || blinding == nil {
		return false
	}
	return c.C.Equal(Commit(amount, blinding).C)
}

// Add combines two commitments homomorphically:
// Commit(v1, r1) + Commit(v2, r2) = Commit(v1+v2, r1+r2).
func (c *Commitment) Add(other *Commitment) *Commitment {
	return &Commitment{C: c.C.Add(other.C)}
}

// Sub combines two commitments homomorphically into a commitment to the
// difference of their amounts.
func (c *Commitment) Sub(other *Commitment) *Commitment {
	return &Commitment{C: c.C.Sub(other.C)}
}

func (c *Commitment) Equal(other *Commitment) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.C.Equal(other.C)
}

// VerifyBalance reports whether the input commitments and output commitments
// sum to the same point, proving conservation of value without revealing any
// amount. Blinding factors must have been chosen to balance as well.
func VerifyBalance(inputs, outputs []*Commitment) bool {
	if len(inputs) == 0 || len(outputs) == 0 {
		return false
	}
	inSum := inputs[0]
	for _, c := range inputs[1:] {
		inSum = inSum.Add(c)
	}
	outSum := outputs[0]
	for _, c := range outputs[1:] {
		outSum = outSum.Add(c)
	}
	return inSum.Equal(outSum)
}

func (Commitment) Domain() string {
	return "Pedersen Commitment"
}

func (c *Commitment) MarshalBinary() ([]byte, error) {
	return c.C.MarshalBinary()
}

func (c *Commitment) UnmarshalBinary(data []byte) error {
	if c.C == nil {
		return errors.New("pedersen: unmarshal into uninitialized commitment")
	}
	return c.C.UnmarshalBinary(data)
}

func (c *Commitment) WriteTo(w io.Writer) (int64, error) {
	buf, err := c.C.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}
