package confidential

import (
	"context"
	"crypto/sha256"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfoSigning = "zera/wallet/signing/v1"

// ErrInvalidMnemonic is returned when a recovery phrase fails checksum
// validation.
var ErrInvalidMnemonic = errors.New("confidential: invalid mnemonic")

// Wallet signs ledger transactions on behalf of an account. The engine never
// needs the signing secret itself, so hardware and remote signers fit behind
// the same interface.
type Wallet interface {
	// PublicKey returns the compressed signing public key.
	PublicKey() []byte

	// Sign signs the message and returns a DER-encoded signature.
	Sign(ctx context.Context, msg []byte) ([]byte, error)

	// SignAll signs each message in order, stopping at the first failure.
	SignAll(ctx context.Context, msgs [][]byte) ([][]byte, error)
}

// KeypairWallet holds the signing key in process memory.
type KeypairWallet struct {
	priv *secp256k1.PrivateKey
}

var _ Wallet = (*KeypairWallet)(nil)

// NewKeypairWallet wraps a 32-byte signing secret.
func NewKeypairWallet(secret []byte) (*KeypairWallet, error) {
	if len(secret) != 32 {
		return nil, errors.Errorf("confidential: signing secret must be 32 bytes, got %d", len(secret))
	}
	return &KeypairWallet{priv: secp256k1.PrivKeyFromBytes(secret)}, nil
}

// NewKeypairWalletFromMnemonic derives the signing key deterministically from
// a BIP-39 recovery phrase.
func NewKeypairWalletFromMnemonic(mnemonic, passphrase string) (*KeypairWallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, passphrase)

	secret := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, seed, nil, []byte(hkdfInfoSigning)), secret); err != nil {
		return nil, errors.WithMessage(err, "confidential: seed expansion failed")
	}
	return NewKeypairWallet(secret)
}

func (w *KeypairWallet) PublicKey() []byte {
	return w.priv.PubKey().SerializeCompressed()
}

func (w *KeypairWallet) Sign(_ context.Context, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	return ecdsa.Sign(w.priv, digest[:]).Serialize(), nil
}

func (w *KeypairWallet) SignAll(ctx context.Context, msgs [][]byte) ([][]byte, error) {
	sigs := make([][]byte, 0, len(msgs))
	for _, msg := range msgs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		sig, err := w.Sign(ctx, msg)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// Zero clears the signing secret in place.
func (w *KeypairWallet) Zero() {
	if w.priv != nil {
		w.priv.Zero()
	}
}

// ExternalSignerWallet delegates signing to a caller-supplied function, for
// keys held in hardware or a remote service.
type ExternalSignerWallet struct {
	pub    []byte
	signFn func(ctx context.Context, msg []byte) ([]byte, error)
}

var _ Wallet = (*ExternalSignerWallet)(nil)

func NewExternalSignerWallet(pub []byte, sign func(ctx context.Context, msg []byte) ([]byte, error)) (*ExternalSignerWallet, error) {
	if len(pub) == 0 || sign == nil {
		return nil, errors.New("confidential: external signer needs a public key and a sign function")
	}
	return &ExternalSignerWallet{pub: pub, signFn: sign}, nil
}

func (w *ExternalSignerWallet) PublicKey() []byte {
	return w.pub
}

func (w *ExternalSignerWallet) Sign(ctx context.Context, msg []byte) ([]byte, error) {
	return w.signFn(ctx, msg)
}

func (w *ExternalSignerWallet) SignAll(ctx context.Context, msgs [][]byte) ([][]byte, error) {
	sigs := make([][]byte, 0, len(msgs))
	for _, msg := range msgs {
		sig, err := w.signFn(ctx, msg)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
