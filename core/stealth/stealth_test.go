package stealth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

var testGroup = curve.Secp256k1{}

func TestAddressRoundTrip(t *testing.T) {
	recipient := GenerateKeys(testGroup)
	meta := recipient.MetaAddress()

	addr, eph, err := GenerateAddress(meta, nil)
	require.NoError(t, err)
	require.NotNil(t, addr)
	assert.False(t, addr.Point.IsIdentity())
	assert.NotEmpty(t, addr.String())

	payment := &Payment{
		Address:            addr.Point,
		EphemeralPublicKey: eph.PublicKey(),
		ViewTag:            addr.ViewTag,
	}

	kp, err := recipient.DeriveSpendingKey(payment)
	require.NoError(t, err)
	assert.True(t, kp.PublicKey().Equal(addr.Point))
}

func TestAddressesAreUnlinkable(t *testing.T) {
	recipient := GenerateKeys(testGroup)
	meta := recipient.MetaAddress()

	a1, _, err := GenerateAddress(meta, nil)
	require.NoError(t, err)
	a2, _, err := GenerateAddress(meta, nil)
	require.NoError(t, err)

	assert.False(t, a1.Point.Equal(a2.Point))
}

func TestForeignPaymentRejected(t *testing.T) {
	recipient := GenerateKeys(testGroup)
	stranger := GenerateKeys(testGroup)

	addr, eph, err := GenerateAddress(recipient.MetaAddress(), nil)
	require.NoError(t, err)

	payment := &Payment{
		Address:            addr.Point,
		EphemeralPublicKey: eph.PublicKey(),
		ViewTag:            addr.ViewTag,
	}
	_, err = stranger.DeriveSpendingKey(payment)
	assert.ErrorIs(t, err, ErrForeignPayment)
}

func TestGenerateAddressValidation(t *testing.T) {
	_, _, err := GenerateAddress(&MetaAddress{}, nil)
	assert.ErrorIs(t, err, ErrInvalidMetaAddress)

	recipient := GenerateKeys(testGroup)
	observed := EphemeralFromPublic(NewEphemeralKey(testGroup).PublicKey())
	_, _, err = GenerateAddress(recipient.MetaAddress(), observed)
	assert.Error(t, err)
}

func TestVerifyAddress(t *testing.T) {
	recipient := GenerateKeys(testGroup)
	meta := recipient.MetaAddress()

	addr, eph, err := GenerateAddress(meta, nil)
	require.NoError(t, err)

	assert.True(t, VerifyAddress(addr.Point, meta, eph))

	// A different address does not verify against this derivation.
	other, _, err := GenerateAddress(meta, nil)
	require.NoError(t, err)
	assert.False(t, VerifyAddress(other.Point, meta, eph))

	// Without the ephemeral secret only structural checks remain.
	public := EphemeralFromPublic(eph.PublicKey())
	assert.True(t, VerifyAddress(addr.Point, meta, public))
	assert.True(t, CheckAddress(addr.Point, meta, eph.PublicKey()))
	assert.False(t, CheckAddress(testGroup.NewPoint(), meta, eph.PublicKey()))
}

func TestScan(t *testing.T) {
	recipient := GenerateKeys(testGroup)
	stranger := GenerateKeys(testGroup)

	announcements := make([]*Announcement, 0, 20)
	mine := map[int]bool{3: true, 11: true, 17: true}
	for i := 0; i < 20; i++ {
		meta := stranger.MetaAddress()
		if mine[i] {
			meta = recipient.MetaAddress()
		}
		addr, eph, err := GenerateAddress(meta, nil)
		require.NoError(t, err)
		announcements = append(announcements, &Announcement{
			EphemeralPublicKey: eph.PublicKey(),
			Destination:        addr.Point,
			ViewTag:            addr.ViewTag,
		})
		eph.Discard()
	}

	payments, err := recipient.Scan(context.Background(), announcements, nil)
	require.NoError(t, err)
	require.Len(t, payments, len(mine))

	// Results arrive in candidate order and each is spendable.
	assert.True(t, payments[0].Address.Equal(announcements[3].Destination))
	assert.True(t, payments[1].Address.Equal(announcements[11].Destination))
	assert.True(t, payments[2].Address.Equal(announcements[17].Destination))
	for _, p := range payments {
		kp, err := recipient.DeriveSpendingKey(p)
		require.NoError(t, err)
		assert.True(t, kp.PublicKey().Equal(p.Address))
	}

	// A stranger scanning the same list finds only its own payments.
	others, err := stranger.Scan(context.Background(), announcements, nil)
	require.NoError(t, err)
	assert.Len(t, others, 20-len(mine))
}

func TestScanSkipViewTags(t *testing.T) {
	recipient := GenerateKeys(testGroup)

	addr, eph, err := GenerateAddress(recipient.MetaAddress(), nil)
	require.NoError(t, err)

	// Corrupt the view tag: the fast path misses the payment, the full
	// check still finds it.
	ann := []*Announcement{{
		EphemeralPublicKey: eph.PublicKey(),
		Destination:        addr.Point,
		ViewTag:            addr.ViewTag + 1,
	}}

	payments, err := recipient.Scan(context.Background(), ann, nil)
	require.NoError(t, err)
	assert.Empty(t, payments)

	payments, err = recipient.Scan(context.Background(), ann, &ScanOptions{SkipViewTags: true})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestScanSkipsMalformedAnnouncements(t *testing.T) {
	recipient := GenerateKeys(testGroup)

	payments, err := recipient.Scan(context.Background(), []*Announcement{nil, {}}, nil)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestKeysFromSeed(t *testing.T) {
	seed := []byte("a sufficiently long wallet backup seed")

	k1, err := KeysFromSeed(testGroup, seed)
	require.NoError(t, err)
	k2, err := KeysFromSeed(testGroup, seed)
	require.NoError(t, err)

	assert.True(t, k1.View.PublicKey().Equal(k2.View.PublicKey()))
	assert.True(t, k1.Spend.PublicKey().Equal(k2.Spend.PublicKey()))
	assert.False(t, k1.View.PublicKey().Equal(k1.Spend.PublicKey()))

	k3, err := KeysFromSeed(testGroup, []byte("another seed"))
	require.NoError(t, err)
	assert.False(t, k1.View.PublicKey().Equal(k3.View.PublicKey()))
}

func TestMetaAddressMarshalRoundTrip(t *testing.T) {
	meta := GenerateKeys(testGroup).MetaAddress()

	raw, err := meta.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, 2*curve.PointBytes)

	restored := NewMetaAddress(testGroup)
	require.NoError(t, restored.UnmarshalBinary(raw))
	assert.True(t, restored.ViewPublicKey.Equal(meta.ViewPublicKey))
	assert.True(t, restored.SpendPublicKey.Equal(meta.SpendPublicKey))

	assert.Error(t, NewMetaAddress(testGroup).UnmarshalBinary(raw[:16]))
}
