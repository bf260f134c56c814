package curve

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomScalar(t *testing.T, group Curve) Scalar {
	t.Helper()
	buf := make([]byte, group.SafeScalarBytes())
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return group.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf))
}

func TestScalarArithmetic(t *testing.T) {
	group := Secp256k1{}

	a := group.NewScalar().SetUint64(5)
	b := group.NewScalar().SetUint64(7)

	assert.True(t, a.Add(b).Equal(group.NewScalar().SetUint64(12)))
	assert.True(t, b.Sub(a).Equal(group.NewScalar().SetUint64(2)))
	assert.True(t, a.Mul(b).Equal(group.NewScalar().SetUint64(35)))
	assert.True(t, a.Add(a.Negate()).IsZero())

	one := group.NewScalar().SetUint64(1)
	assert.True(t, a.Mul(a.Invert()).Equal(one))
}

func TestScalarArithmeticDoesNotMutateOperands(t *testing.T) {
	group := Secp256k1{}

	a := group.NewScalar().SetUint64(5)
	b := group.NewScalar().SetUint64(7)
	_ = a.Add(b)
	_ = a.Mul(b)
	_ = a.Negate()

	assert.True(t, a.Equal(group.NewScalar().SetUint64(5)))
	assert.True(t, b.Equal(group.NewScalar().SetUint64(7)))
}

func TestScalarMarshalRoundTrip(t *testing.T) {
	group := Secp256k1{}
	a := randomScalar(t, group)

	raw, err := a.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, ScalarBytes)

	b := group.NewScalar()
	require.NoError(t, b.UnmarshalBinary(raw))
	assert.True(t, a.Equal(b))
}

func TestPointArithmetic(t *testing.T) {
	group := Secp256k1{}
	g := group.NewBasePoint()

	twoG := group.NewScalar().SetUint64(2).ActOnBase()
	assert.True(t, twoG.Equal(g.Add(g)))

	assert.True(t, g.Sub(g).IsIdentity())
	assert.True(t, g.Add(g.Negate()).IsIdentity())

	// Adding the identity is a no-op.
	assert.True(t, g.Add(group.NewPoint()).Equal(g))
}

func TestActConsistency(t *testing.T) {
	group := Secp256k1{}
	k := randomScalar(t, group)

	assert.True(t, k.Act(group.NewBasePoint()).Equal(k.ActOnBase()))
}

func TestPointMarshalRoundTrip(t *testing.T) {
	group := Secp256k1{}
	p := randomScalar(t, group).ActOnBase()

	raw, err := p.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, PointBytes)

	q := group.NewPoint()
	require.NoError(t, q.UnmarshalBinary(raw))
	assert.True(t, p.Equal(q))
}

func TestIdentityMarshalsAllZero(t *testing.T) {
	group := Secp256k1{}

	raw, err := group.NewPoint().MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, PointBytes)
	for _, b := range raw {
		assert.Zero(t, b)
	}

	p := group.NewBasePoint()
	require.NoError(t, p.UnmarshalBinary(raw))
	assert.True(t, p.IsIdentity())
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	group := Secp256k1{}

	assert.Error(t, group.NewPoint().UnmarshalBinary([]byte{1, 2, 3}))

	bad := make([]byte, PointBytes)
	bad[0] = 0xff
	assert.Error(t, group.NewPoint().UnmarshalBinary(bad))
}
