package elgamal

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	core "github.com/jskoiz/zeraprivacy/core/elgamal"
	"github.com/jskoiz/zeraprivacy/core/math/curve"
	"github.com/jskoiz/zeraprivacy/core/math/sample"
	cs_elgamal "github.com/jskoiz/zeraprivacy/pkg/common/cryptosuite/elgamal"
	"github.com/jskoiz/zeraprivacy/pkg/common/keystore"
)

// RoleBalance is the keyring role of an account's balance-encryption key.
const RoleBalance = "elgamal-balance"

type Config struct {
	Group curve.Curve
}

type ElgamalKeyManager struct {
	keystore keystore.Keystore
	cfg      *Config
}

func NewElgamalKeyManager(store keystore.Keystore, cfg *Config) *ElgamalKeyManager {
	return &ElgamalKeyManager{
		keystore: store,
		cfg:      cfg,
	}
}

func (mgr *ElgamalKeyManager) GenerateKey(account string) (cs_elgamal.ElgamalKey, error) {
	// generate a new ElGamal key pair
	sk, pk := sample.ScalarPointPair(rand.Reader, mgr.cfg.Group)
	key := ElgamalKey{sk, pk, mgr.cfg.Group}

	// serialize the full key for vault storage
	decoded, err := key.vaultBytes()
	if err != nil {
		return ElgamalKey{}, err
	}

	// get key SKI and encode it to hex string as keyID
	keyID := hex.EncodeToString(key.SKI())

	// import the key to the keystore bound to the account
	if err := mgr.keystore.Import(keyID, decoded, account, RoleBalance); err != nil {
		return ElgamalKey{}, err
	}

	return key, nil
}

func (mgr *ElgamalKeyManager) ImportKey(data interface{}, account string) (cs_elgamal.ElgamalKey, error) {
	var key ElgamalKey

	switch raw := data.(type) {
	case []byte:
		k, err := fromBytes(raw)
		if err != nil {
			return ElgamalKey{}, err
		}
		key = k
	case ElgamalKey:
		key = raw
	default:
		return ElgamalKey{}, ErrInvalidKey
	}

	decoded, err := key.vaultBytes()
	if err != nil {
		return ElgamalKey{}, err
	}

	keyID := hex.EncodeToString(key.SKI())
	if err := mgr.keystore.Import(keyID, decoded, account, RoleBalance); err != nil {
		return ElgamalKey{}, err
	}

	return key, nil
}

func (mgr *ElgamalKeyManager) GetKey(account string) (cs_elgamal.ElgamalKey, error) {
	decoded, err := mgr.keystore.Get(account, RoleBalance)
	if err != nil {
		return ElgamalKey{}, err
	}

	return fromBytes(decoded)
}

func (mgr *ElgamalKeyManager) Encrypt(account string, amount uint64) (*core.Ciphertext, curve.Scalar, error) {
	k, err := mgr.GetKey(account)
	if err != nil {
		return nil, nil, err
	}
	return k.Encrypt(amount)
}

func (mgr *ElgamalKeyManager) Decrypt(ctx context.Context, account string, ct *core.Ciphertext, opts *core.DecryptOptions) (uint64, error) {
	k, err := mgr.GetKey(account)
	if err != nil {
		return 0, err
	}
	return k.Decrypt(ctx, ct, opts)
}
