package confidential

import (
	"context"

	"github.com/google/uuid"

	"github.com/jskoiz/zeraprivacy/core/elgamal"
	"github.com/jskoiz/zeraprivacy/core/pedersen"
	"github.com/jskoiz/zeraprivacy/core/stealth"
)

// EncryptedAmount is the confidential form of a token amount: the ciphertext
// carries it for the recipient, the commitment binds it for verifiers, and
// the range proof shows it is a valid amount without revealing it.
type EncryptedAmount struct {
	Ciphertext *elgamal.Ciphertext
	Commitment *pedersen.Commitment
	RangeProof []byte
}

// Recipient identifies where a transfer goes. EncryptionKey is the
// recipient's balance-encryption public key and is always required. A
// non-nil Meta routes the payment through a fresh stealth address instead of
// a long-lived account identifier.
type Recipient struct {
	EncryptionKey elgamal.PublicKey
	Meta          *stealth.MetaAddress
}

// Receipt records an operation the engine has handed to the ledger.
type Receipt struct {
	// TxID is the ledger's identifier for the submitted transaction.
	TxID string

	// ClientID is the engine-side identifier, assigned before submission
	// so failed submissions remain traceable.
	ClientID uuid.UUID

	// Destination is the base58 rendering of where the funds went.
	Destination string

	// Amount is the confidential payload that was submitted.
	Amount *EncryptedAmount

	// Announcement is set for stealth transfers; the recipient discovers
	// the payment by scanning for it.
	Announcement *stealth.Announcement
}

// Submitter hands a confidential payload to the underlying ledger and
// returns its transaction id. Implementations own retries and fee handling.
type Submitter interface {
	Submit(ctx context.Context, amount *EncryptedAmount, destination string) (string, error)
}

// BalanceQuerier fetches an account's encrypted balance from the ledger, for
// engines that did not observe the account's full history themselves.
type BalanceQuerier interface {
	GetEncryptedBalance(ctx context.Context, account string) (*elgamal.Ciphertext, error)
}
