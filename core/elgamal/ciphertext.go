package elgamal

import (
	"io"

	"github.com/pkg/errors"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

// Ciphertext is a twisted-ElGamal encryption of an amount.
type Ciphertext struct {
	// C1 = nonce⋅G
	C1 curve.Point
	// C2 = amount⋅G + nonce⋅pk
	C2 curve.Point
}

func NewCiphertext(group curve.Curve) *Ciphertext {
	return &Ciphertext{
		C1: group.NewPoint(),
		C2: group.NewPoint(),
	}
}

// Valid returns true if the ciphertext passes basic validation.
func (c *Ciphertext) Valid() bool {
	if c == nil || c.C1 == nil || c.C1.IsIdentity() ||
		c.C2 == nil || c.C2.IsIdentity() {
		return false
	}
	return true
}

// Add combines two ciphertexts encrypted under the same public key into an
// encryption of the sum of their amounts.
func (c *Ciphertext) Add(other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: c.C1.Add(other.C1),
		C2: c.C2.Add(other.C2),
	}
}

// Sub combines two ciphertexts encrypted under the same public key into an
// encryption of the difference of their amounts.
func (c *Ciphertext) Sub(other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: c.C1.Sub(other.C1),
		C2: c.C2.Sub(other.C2),
	}
}

func (Ciphertext) Domain() string {
	return "ElGamal Ciphertext"
}

func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	buf, err := c.C1.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf2, err := c.C2.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(buf, buf2...), nil
}

func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	if len(data) != 2*curve.PointBytes {
		return errors.Errorf("elgamal: invalid ciphertext length %d", len(data))
	}
	if c.C1 == nil || c.C2 == nil {
		return errors.New("elgamal: unmarshal into uninitialized ciphertext")
	}
	if err := c.C1.UnmarshalBinary(data[:curve.PointBytes]); err != nil {
		return err
	}
	return c.C2.UnmarshalBinary(data[curve.PointBytes:])
}

func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var n int

	buf, err := c.C1.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err = w.Write(buf)
	total += int64(n)
	if err != nil {
		return total, err
	}

	buf, err = c.C2.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err = w.Write(buf)
	total += int64(n)
	if err != nil {
		return total, err
	}

	return total, nil
}
