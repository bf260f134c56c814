package curve

import (
	"encoding/binary"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// PointBytes is the length of a compressed point encoding.
const PointBytes = 33

// ScalarBytes is the length of a canonical scalar encoding.
const ScalarBytes = 32

// Secp256k1 wraps the secp256k1 group, which has prime order and cofactor 1.
type Secp256k1 struct{}

var (
	secp256k1OrderOnce sync.Once
	secp256k1Order     *saferith.Modulus

	secp256k1BaseOnce sync.Once
	secp256k1Base     secp256k1.JacobianPoint
)

func (Secp256k1) Name() string {
	return "secp256k1"
}

func (Secp256k1) ScalarBits() int {
	return 256
}

func (Secp256k1) SafeScalarBytes() int {
	// 128 extra bits so that the bias of the reduction is negligible.
	return (256 + 128) / 8
}

func (Secp256k1) Order() *saferith.Modulus {
	secp256k1OrderOnce.Do(func() {
		secp256k1Order = saferith.ModulusFromBytes(secp256k1.S256().N.Bytes())
	})
	return secp256k1Order
}

func (Secp256k1) NewPoint() Point {
	return new(Secp256k1Point)
}

func (Secp256k1) NewBasePoint() Point {
	secp256k1BaseOnce.Do(func() {
		one := new(secp256k1.ModNScalar).SetInt(1)
		secp256k1.ScalarBaseMultNonConst(one, &secp256k1Base)
		secp256k1Base.ToAffine()
	})
	p := new(Secp256k1Point)
	p.value.Set(&secp256k1Base)
	return p
}

func (Secp256k1) NewScalar() Scalar {
	return new(Secp256k1Scalar)
}

// Secp256k1Scalar is an integer modulo the order of the secp256k1 group.
type Secp256k1Scalar struct {
	value secp256k1.ModNScalar
}

func (*Secp256k1Scalar) Curve() Curve {
	return Secp256k1{}
}

func (s *Secp256k1Scalar) Add(t Scalar) Scalar {
	r := new(Secp256k1Scalar)
	r.value.Add2(&s.value, &mustSecp256k1Scalar(t).value)
	return r
}

func (s *Secp256k1Scalar) Sub(t Scalar) Scalar {
	r := new(Secp256k1Scalar)
	r.value.NegateVal(&mustSecp256k1Scalar(t).value)
	r.value.Add(&s.value)
	return r
}

func (s *Secp256k1Scalar) Mul(t Scalar) Scalar {
	r := new(Secp256k1Scalar)
	r.value.Mul2(&s.value, &mustSecp256k1Scalar(t).value)
	return r
}

func (s *Secp256k1Scalar) Negate() Scalar {
	r := new(Secp256k1Scalar)
	r.value.NegateVal(&s.value)
	return r
}

func (s *Secp256k1Scalar) Invert() Scalar {
	r := new(Secp256k1Scalar)
	r.value.InverseValNonConst(&s.value)
	return r
}

func (s *Secp256k1Scalar) Equal(t Scalar) bool {
	return s.value.Equals(&mustSecp256k1Scalar(t).value)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.value.IsZero()
}

func (s *Secp256k1Scalar) SetNat(x *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(x, Secp256k1{}.Order())
	buf := make([]byte, ScalarBytes)
	reduced.FillBytes(buf)
	s.value.SetByteSlice(buf)
	return s
}

func (s *Secp256k1Scalar) SetUint64(v uint64) Scalar {
	var buf [ScalarBytes]byte
	binary.BigEndian.PutUint64(buf[ScalarBytes-8:], v)
	s.value.SetBytes(&buf)
	return s
}

func (s *Secp256k1Scalar) Zero() {
	s.value.Zero()
}

func (s *Secp256k1Scalar) Act(q Point) Point {
	var tmp secp256k1.JacobianPoint
	tmp.Set(&mustSecp256k1Point(q).value)
	r := new(Secp256k1Point)
	secp256k1.ScalarMultNonConst(&s.value, &tmp, &r.value)
	return r
}

func (s *Secp256k1Scalar) ActOnBase() Point {
	r := new(Secp256k1Point)
	secp256k1.ScalarBaseMultNonConst(&s.value, &r.value)
	return r
}

func (s *Secp256k1Scalar) MarshalBinary() ([]byte, error) {
	buf := s.value.Bytes()
	return buf[:], nil
}

func (s *Secp256k1Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != ScalarBytes {
		return errors.Errorf("curve: invalid scalar length %d", len(data))
	}
	if overflow := s.value.SetByteSlice(data); overflow {
		return errors.New("curve: scalar not in canonical range")
	}
	return nil
}

// Secp256k1Point is a group element of secp256k1. The zero value is the
// identity element.
type Secp256k1Point struct {
	value secp256k1.JacobianPoint
}

func (*Secp256k1Point) Curve() Curve {
	return Secp256k1{}
}

func (p *Secp256k1Point) Add(q Point) Point {
	var a, b secp256k1.JacobianPoint
	a.Set(&p.value)
	b.Set(&mustSecp256k1Point(q).value)
	r := new(Secp256k1Point)
	secp256k1.AddNonConst(&a, &b, &r.value)
	return r
}

func (p *Secp256k1Point) Sub(q Point) Point {
	return p.Add(q.Negate())
}

func (p *Secp256k1Point) Negate() Point {
	if p.IsIdentity() {
		return new(Secp256k1Point)
	}
	r := new(Secp256k1Point)
	r.value.Set(&p.value)
	r.value.ToAffine()
	r.value.Y.Negate(1)
	r.value.Y.Normalize()
	return r
}

func (p *Secp256k1Point) Equal(q Point) bool {
	o := mustSecp256k1Point(q)
	if p.IsIdentity() || o.IsIdentity() {
		return p.IsIdentity() && o.IsIdentity()
	}
	var a, b secp256k1.JacobianPoint
	a.Set(&p.value)
	b.Set(&o.value)
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

func (p *Secp256k1Point) IsIdentity() bool {
	return (p.value.X.IsZero() && p.value.Y.IsZero()) || p.value.Z.IsZero()
}

func (p *Secp256k1Point) MarshalBinary() ([]byte, error) {
	if p.IsIdentity() {
		return make([]byte, PointBytes), nil
	}
	var a secp256k1.JacobianPoint
	a.Set(&p.value)
	a.ToAffine()
	return secp256k1.NewPublicKey(&a.X, &a.Y).SerializeCompressed(), nil
}

func (p *Secp256k1Point) UnmarshalBinary(data []byte) error {
	if len(data) != PointBytes {
		return errors.Errorf("curve: invalid point length %d", len(data))
	}
	if allZero(data) {
		p.value = secp256k1.JacobianPoint{}
		return nil
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return errors.WithMessage(err, "curve: invalid point encoding")
	}
	pub.AsJacobian(&p.value)
	return nil
}

func mustSecp256k1Scalar(s Scalar) *Secp256k1Scalar {
	t, ok := s.(*Secp256k1Scalar)
	if !ok {
		panic("curve: mixed curve scalar")
	}
	return t
}

func mustSecp256k1Point(p Point) *Secp256k1Point {
	q, ok := p.(*Secp256k1Point)
	if !ok {
		panic("curve: mixed curve point")
	}
	return q
}

func allZero(data []byte) bool {
	var acc byte
	for _, b := range data {
		acc |= b
	}
	return acc == 0
}
