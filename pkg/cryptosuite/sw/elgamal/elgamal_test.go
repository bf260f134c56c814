package elgamal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/jskoiz/zeraprivacy/core/elgamal"
	"github.com/jskoiz/zeraprivacy/core/math/curve"
	"github.com/jskoiz/zeraprivacy/pkg/keyring"
	"github.com/jskoiz/zeraprivacy/pkg/keystore"
	"github.com/jskoiz/zeraprivacy/pkg/vault"
)

func newTestKeyManager() *ElgamalKeyManager {
	ks := keystore.NewInMemoryKeystore(vault.NewInMemoryVault(), keyring.NewInMemoryKeyring())
	return NewElgamalKeyManager(ks, &Config{Group: curve.Secp256k1{}})
}

func TestGenerateAndGetKey(t *testing.T) {
	mgr := newTestKeyManager()

	key, err := mgr.GenerateKey("alice")
	require.NoError(t, err)
	assert.True(t, key.Private())
	assert.Len(t, key.SKI(), 32)

	got, err := mgr.GetKey("alice")
	require.NoError(t, err)
	assert.Equal(t, key.SKI(), got.SKI())
	assert.True(t, got.Private())
	assert.True(t, got.PublicKeyRaw().Equal(key.PublicKeyRaw()))
}

func TestGetKeyUnknownAccount(t *testing.T) {
	mgr := newTestKeyManager()

	_, err := mgr.GetKey("nobody")
	assert.Error(t, err)
}

func TestBytesOmitsSecret(t *testing.T) {
	mgr := newTestKeyManager()

	key, err := mgr.GenerateKey("alice")
	require.NoError(t, err)

	raw, err := key.Bytes()
	require.NoError(t, err)

	// The exported form carries the public half only.
	restored, err := fromBytes(raw)
	require.NoError(t, err)
	assert.False(t, restored.Private())
	assert.True(t, restored.PublicKeyRaw().Equal(key.PublicKeyRaw()))
	assert.Equal(t, key.SKI(), restored.SKI())
}

func TestPublicKeyCannotDecrypt(t *testing.T) {
	mgr := newTestKeyManager()

	key, err := mgr.GenerateKey("alice")
	require.NoError(t, err)

	ct, _, err := key.Encrypt(42)
	require.NoError(t, err)

	pub := key.PublicKey()
	assert.False(t, pub.Private())
	_, err = pub.Decrypt(context.Background(), ct, nil)
	assert.ErrorIs(t, err, ErrPublicOnly)
}

func TestImportKey(t *testing.T) {
	mgr := newTestKeyManager()

	key, err := mgr.GenerateKey("alice")
	require.NoError(t, err)

	// Import the public half under a different account.
	raw, err := key.Bytes()
	require.NoError(t, err)
	imported, err := mgr.ImportKey(raw, "alice-watchonly")
	require.NoError(t, err)
	assert.False(t, imported.Private())
	assert.Equal(t, key.SKI(), imported.SKI())

	_, err = mgr.ImportKey(42, "bogus")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = mgr.ImportKey([]byte("not cbor"), "bogus")
	assert.Error(t, err)
}

func TestManagerEncryptDecrypt(t *testing.T) {
	mgr := newTestKeyManager()

	_, err := mgr.GenerateKey("alice")
	require.NoError(t, err)

	ct, nonce, err := mgr.Encrypt("alice", 31_337)
	require.NoError(t, err)
	require.NotNil(t, ct)
	assert.False(t, nonce.IsZero())

	amount, err := mgr.Decrypt(context.Background(), "alice", ct, &core.DecryptOptions{
		MaxAmount:          1 << 16,
		GiantStepThreshold: 1 << 16,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(31_337), amount)
}
