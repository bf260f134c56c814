package pedersen

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

var testGroup = curve.Secp256k1{}

func TestCommitVerify(t *testing.T) {
	r := NewBlinding(testGroup)
	c := Commit(1_000_000, r)

	assert.True(t, c.Verify(1_000_000, r))
	assert.False(t, c.Verify(1_000_001, r))
	assert.False(t, c.Verify(1_000_000, NewBlinding(testGroup)))
}

func TestCommitZeroAmount(t *testing.T) {
	r := NewBlinding(testGroup)
	c := Commit(0, r)

	// A zero amount still hides behind the blinding term.
	assert.False(t, c.C.IsIdentity())
	assert.True(t, c.Verify(0, r))
}

func TestCommitIsHiding(t *testing.T) {
	c1 := Commit(42, NewBlinding(testGroup))
	c2 := Commit(42, NewBlinding(testGroup))
	assert.False(t, c1.Equal(c2))
}

func TestCommitBigRejectsInvalidAmounts(t *testing.T) {
	r := NewBlinding(testGroup)

	_, err := CommitBig(nil, r)
	assert.ErrorIs(t, err, ErrInvalidAmountRange)

	_, err = CommitBig(big.NewInt(-5), r)
	assert.ErrorIs(t, err, ErrInvalidAmountRange)

	_, err = CommitBig(new(big.Int).Lsh(big.NewInt(1), 64), r)
	assert.ErrorIs(t, err, ErrInvalidAmountRange)

	c, err := CommitBig(big.NewInt(77), r)
	require.NoError(t, err)
	assert.True(t, c.Verify(77, r))
}

func TestHomomorphicAdd(t *testing.T) {
	r1 := NewBlinding(testGroup)
	r2 := NewBlinding(testGroup)

	c1 := Commit(500_000_000, r1)
	c2 := Commit(1_500_000_000, r2)

	sum := c1.Add(c2)
	combined := Commit(2_000_000_000, r1.Add(r2))

	assert.True(t, sum.Equal(combined))

	// The homomorphic sum is indistinguishable from a direct commitment,
	// down to the serialized bytes.
	sumRaw, err := sum.MarshalBinary()
	require.NoError(t, err)
	combinedRaw, err := combined.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, combinedRaw, sumRaw)

	assert.True(t, sum.Verify(2_000_000_000, r1.Add(r2)))
}

func TestHomomorphicSub(t *testing.T) {
	r1 := NewBlinding(testGroup)
	r2 := NewBlinding(testGroup)

	c1 := Commit(70_000, r1)
	c2 := Commit(30_000, r2)

	diff := c1.Sub(c2)
	assert.True(t, diff.Verify(40_000, r1.Sub(r2)))
}

func TestVerifyBalance(t *testing.T) {
	r1 := NewBlinding(testGroup)
	r2 := NewBlinding(testGroup)

	inputs := []*Commitment{Commit(2_000_000_000, r1.Add(r2))}
	outputs := []*Commitment{Commit(500_000_000, r1), Commit(1_500_000_000, r2)}
	assert.True(t, VerifyBalance(inputs, outputs))

	// Conservation fails when an output amount changes.
	badOutputs := []*Commitment{Commit(500_000_001, r1), Commit(1_500_000_000, r2)}
	assert.False(t, VerifyBalance(inputs, badOutputs))

	assert.False(t, VerifyBalance(nil, outputs))
	assert.False(t, VerifyBalance(inputs, nil))
}

func TestMarshalRoundTrip(t *testing.T) {
	r := NewBlinding(testGroup)
	c := Commit(987_654, r)

	raw, err := c.MarshalBinary()
	require.NoError(t, err)

	restored := &Commitment{C: testGroup.NewPoint()}
	require.NoError(t, restored.UnmarshalBinary(raw))
	assert.True(t, restored.Equal(c))
	assert.True(t, restored.Verify(987_654, r))
}

func TestGeneratorH(t *testing.T) {
	h := GeneratorH(testGroup)

	assert.False(t, h.IsIdentity())
	assert.False(t, h.Equal(testGroup.NewBasePoint()))

	// Deterministic across calls.
	assert.True(t, h.Equal(GeneratorH(testGroup)))
}
