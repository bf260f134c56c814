// Package confidential orchestrates the privacy primitives into account-level
// operations: deposits, withdrawals and transfers of encrypted amounts, with
// commitments and range proofs attached and stealth destinations on request.
package confidential

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jskoiz/zeraprivacy/core/elgamal"
	"github.com/jskoiz/zeraprivacy/core/math/curve"
	"github.com/jskoiz/zeraprivacy/core/pedersen"
	"github.com/jskoiz/zeraprivacy/core/rangeproof"
	"github.com/jskoiz/zeraprivacy/core/stealth"
	cs_elgamal "github.com/jskoiz/zeraprivacy/pkg/common/cryptosuite/elgamal"
)

var (
	// ErrUninitializedEngine is returned by every operation on an engine
	// that was not built through NewEngine.
	ErrUninitializedEngine = errors.New("confidential: engine not initialized")

	// ErrUnknownAccount is returned when an operation names an account the
	// engine has not opened.
	ErrUnknownAccount = errors.New("confidential: unknown account")

	// ErrInsufficientFunds is returned when a debit exceeds the balance the
	// engine has observed for the account.
	ErrInsufficientFunds = errors.New("confidential: insufficient observed balance")

	// ErrInvalidRecipient is returned when a transfer names a recipient
	// without a usable encryption key.
	ErrInvalidRecipient = errors.New("confidential: recipient has no usable encryption key")
)

// accountBalance is the engine's running view of one account. The encrypted
// aggregate is maintained homomorphically; decryption is never part of a
// balance update. The plain total mirrors only the amounts this engine
// processed itself and exists for overdraft checks.
type accountBalance struct {
	ciphertext *elgamal.Ciphertext
	commitment *pedersen.Commitment
	blinding   pedersen.Blinding
	total      uint64
}

// Engine is the caller-owned orchestrator. It is safe for concurrent use.
// Construct it through NewEngine; the zero value fails every operation with
// ErrUninitializedEngine.
type Engine struct {
	cfg   *Config
	group curve.Curve
	keys  cs_elgamal.ElgamalKeyManager

	prover    rangeproof.Prover
	submitter Submitter
	querier   BalanceQuerier
	log       logrus.FieldLogger
	metrics   *Metrics

	lock     sync.Mutex
	balances map[string]*accountBalance
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithProver swaps the range-proof implementation. The default is the Noop
// placeholder, which provides no soundness.
func WithProver(p rangeproof.Prover) Option {
	return func(e *Engine) { e.prover = p }
}

// WithSubmitter wires the ledger submission path. Without one, operations
// update local state and return receipts with an empty TxID.
func WithSubmitter(s Submitter) Option {
	return func(e *Engine) { e.submitter = s }
}

// WithBalanceQuerier wires a ledger-side balance source for accounts whose
// history this engine has not observed.
func WithBalanceQuerier(q BalanceQuerier) Option {
	return func(e *Engine) { e.querier = q }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(cfg *Config, keys cs_elgamal.ElgamalKeyManager, opts ...Option) (*Engine, error) {
	if cfg == nil || keys == nil {
		return nil, ErrUninitializedEngine
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	group, err := cfg.Group()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		group:    group,
		keys:     keys,
		prover:   rangeproof.Noop{},
		balances: make(map[string]*accountBalance),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		e.log = discard
	}
	return e, nil
}

func (e *Engine) ready() error {
	if e == nil || e.cfg == nil || e.group == nil || e.keys == nil || e.balances == nil {
		return ErrUninitializedEngine
	}
	return nil
}

// OpenAccount generates the account's balance-encryption key and starts its
// running balance at zero. It returns the public key other parties encrypt
// towards.
func (e *Engine) OpenAccount(account string) (elgamal.PublicKey, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	key, err := e.keys.GenerateKey(account)
	if err != nil {
		return nil, err
	}

	e.lock.Lock()
	e.balances[account] = &accountBalance{
		ciphertext: elgamal.NewCiphertext(e.group),
		commitment: &pedersen.Commitment{C: e.group.NewPoint()},
		blinding:   e.group.NewScalar(),
	}
	e.lock.Unlock()

	e.log.WithField("account", account).Info("account opened")
	return key.PublicKeyRaw(), nil
}

// Deposit converts a public amount into the account's encrypted balance.
func (e *Engine) Deposit(ctx context.Context, account string, amount uint64) (*Receipt, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	key, err := e.keys.GetKey(account)
	if err != nil {
		e.metrics.incFailure(opDeposit)
		return nil, err
	}
	ct, _, err := key.Encrypt(amount)
	if err != nil {
		e.metrics.incFailure(opDeposit)
		return nil, err
	}

	bundle, blinding, err := e.seal(ct, amount)
	if err != nil {
		e.metrics.incFailure(opDeposit)
		return nil, err
	}

	receipt := &Receipt{ClientID: uuid.New(), Destination: account, Amount: bundle}
	if e.submitter != nil {
		receipt.TxID, err = e.submitter.Submit(ctx, bundle, account)
		if err != nil {
			e.metrics.incFailure(opDeposit)
			return nil, errors.WithMessage(err, "confidential: submit deposit")
		}
	}

	if err := e.credit(account, amount, ct, bundle.Commitment, blinding); err != nil {
		e.metrics.incFailure(opDeposit)
		return nil, err
	}

	e.metrics.incOp(opDeposit)
	e.log.WithFields(logrus.Fields{
		"account":   account,
		"client_id": receipt.ClientID,
		"tx_id":     receipt.TxID,
	}).Info("deposit submitted")
	return receipt, nil
}

// Transfer moves an encrypted amount from one account to a recipient. The
// payload is encrypted under the recipient's key; the sender's balance is
// debited with a matching ciphertext under its own key. A recipient with a
// meta-address receives the payment at a fresh stealth address.
func (e *Engine) Transfer(ctx context.Context, from string, to Recipient, amount uint64) (*Receipt, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if to.EncryptionKey == nil || to.EncryptionKey.IsIdentity() {
		return nil, ErrInvalidRecipient
	}
	if err := e.checkFunds(from, amount); err != nil {
		e.metrics.incFailure(opTransfer)
		return nil, err
	}

	// The debit uses a ciphertext under the sender's own key so the
	// sender's aggregate stays decryptable by the sender alone.
	senderKey, err := e.keys.GetKey(from)
	if err != nil {
		e.metrics.incFailure(opTransfer)
		return nil, err
	}
	debitCt, _, err := senderKey.Encrypt(amount)
	if err != nil {
		e.metrics.incFailure(opTransfer)
		return nil, err
	}

	outCt, _ := elgamal.Encrypt(to.EncryptionKey, amount)
	bundle, blinding, err := e.seal(outCt, amount)
	if err != nil {
		e.metrics.incFailure(opTransfer)
		return nil, err
	}

	receipt := &Receipt{ClientID: uuid.New(), Amount: bundle}
	if to.Meta != nil {
		addr, eph, err := stealth.GenerateAddress(to.Meta, nil)
		if err != nil {
			e.metrics.incFailure(opTransfer)
			return nil, err
		}
		receipt.Destination = addr.String()
		receipt.Announcement = &stealth.Announcement{
			EphemeralPublicKey: eph.PublicKey(),
			Destination:        addr.Point,
			ViewTag:            addr.ViewTag,
		}
		eph.Discard()
	} else {
		raw, err := to.EncryptionKey.MarshalBinary()
		if err != nil {
			e.metrics.incFailure(opTransfer)
			return nil, err
		}
		receipt.Destination = base58.Encode(raw)
	}

	// Reserve the funds before handing the bundle to the ledger, so a
	// concurrent debit cannot invalidate a transfer that was already
	// submitted.
	if err := e.debit(from, amount, debitCt, bundle.Commitment, blinding); err != nil {
		e.metrics.incFailure(opTransfer)
		return nil, err
	}

	if e.submitter != nil {
		receipt.TxID, err = e.submitter.Submit(ctx, bundle, receipt.Destination)
		if err != nil {
			// The ledger never saw the bundle; release the reservation.
			_ = e.credit(from, amount, debitCt, bundle.Commitment, blinding)
			e.metrics.incFailure(opTransfer)
			return nil, errors.WithMessage(err, "confidential: submit transfer")
		}
	}

	e.metrics.incOp(opTransfer)
	e.log.WithFields(logrus.Fields{
		"from":      from,
		"to":        receipt.Destination,
		"stealth":   receipt.Announcement != nil,
		"client_id": receipt.ClientID,
		"tx_id":     receipt.TxID,
	}).Info("transfer submitted")
	return receipt, nil
}

// Withdraw converts part of the encrypted balance back into a public amount.
func (e *Engine) Withdraw(ctx context.Context, account string, amount uint64) (*Receipt, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.checkFunds(account, amount); err != nil {
		e.metrics.incFailure(opWithdraw)
		return nil, err
	}

	key, err := e.keys.GetKey(account)
	if err != nil {
		e.metrics.incFailure(opWithdraw)
		return nil, err
	}
	ct, _, err := key.Encrypt(amount)
	if err != nil {
		e.metrics.incFailure(opWithdraw)
		return nil, err
	}
	bundle, blinding, err := e.seal(ct, amount)
	if err != nil {
		e.metrics.incFailure(opWithdraw)
		return nil, err
	}

	// Reserve before submission; release if the ledger rejects the bundle.
	if err := e.debit(account, amount, ct, bundle.Commitment, blinding); err != nil {
		e.metrics.incFailure(opWithdraw)
		return nil, err
	}

	receipt := &Receipt{ClientID: uuid.New(), Destination: account, Amount: bundle}
	if e.submitter != nil {
		receipt.TxID, err = e.submitter.Submit(ctx, bundle, account)
		if err != nil {
			_ = e.credit(account, amount, ct, bundle.Commitment, blinding)
			e.metrics.incFailure(opWithdraw)
			return nil, errors.WithMessage(err, "confidential: submit withdrawal")
		}
	}

	e.metrics.incOp(opWithdraw)
	e.log.WithFields(logrus.Fields{
		"account":   account,
		"client_id": receipt.ClientID,
		"tx_id":     receipt.TxID,
	}).Info("withdrawal submitted")
	return receipt, nil
}

// Balance returns the account's encrypted aggregate. Engines that have not
// observed the account fall back to the configured querier.
func (e *Engine) Balance(ctx context.Context, account string) (*EncryptedAmount, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	e.lock.Lock()
	bal, ok := e.balances[account]
	e.lock.Unlock()
	if ok {
		return &EncryptedAmount{Ciphertext: bal.ciphertext, Commitment: bal.commitment}, nil
	}

	if e.querier == nil {
		return nil, ErrUnknownAccount
	}
	ct, err := e.querier.GetEncryptedBalance(ctx, account)
	if err != nil {
		return nil, err
	}
	return &EncryptedAmount{Ciphertext: ct}, nil
}

// DecryptBalance recovers the account's plain balance with its secret key.
// The discrete-log search runs within the configured bound.
func (e *Engine) DecryptBalance(ctx context.Context, account string) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}

	enc, err := e.Balance(ctx, account)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	amount, err := e.keys.Decrypt(ctx, account, enc.Ciphertext, e.cfg.decryptOptions())
	e.metrics.observeDecrypt(time.Since(start))
	return amount, err
}

// VerifyAmount checks the range proof of a confidential payload against its
// commitment.
func (e *Engine) VerifyAmount(amount *EncryptedAmount) error {
	if err := e.ready(); err != nil {
		return err
	}
	if amount == nil || amount.Commitment == nil {
		return rangeproof.ErrProofVerificationFailed
	}
	raw, err := amount.Commitment.MarshalBinary()
	if err != nil {
		return err
	}
	if !e.prover.VerifyProofBytes(amount.RangeProof, raw) {
		return rangeproof.ErrProofVerificationFailed
	}
	return nil
}

// ScanPayments checks announcements against the holder's stealth keys using
// the configured parallelism.
func (e *Engine) ScanPayments(ctx context.Context, keys *stealth.Keys, announcements []*stealth.Announcement) ([]*stealth.Payment, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	payments, err := keys.Scan(ctx, announcements, &stealth.ScanOptions{Parallelism: e.cfg.ScanParallelism})
	e.metrics.observeScan(time.Since(start), len(announcements))
	return payments, err
}

// seal wraps a ciphertext with its commitment and range proof.
func (e *Engine) seal(ct *elgamal.Ciphertext, amount uint64) (*EncryptedAmount, pedersen.Blinding, error) {
	blinding := pedersen.NewBlinding(e.group)
	com := pedersen.Commit(amount, blinding)

	comRaw, err := com.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	blindRaw, err := blinding.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	proof, err := e.prover.BuildProofBytes(amount, comRaw, blindRaw, e.cfg.RangeProofBits)
	if err != nil {
		return nil, nil, err
	}
	return &EncryptedAmount{Ciphertext: ct, Commitment: com, RangeProof: proof}, blinding, nil
}

func (e *Engine) checkFunds(account string, amount uint64) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	bal, ok := e.balances[account]
	if !ok {
		return ErrUnknownAccount
	}
	if bal.total < amount {
		return ErrInsufficientFunds
	}
	return nil
}

func (e *Engine) credit(account string, amount uint64, ct *elgamal.Ciphertext, com *pedersen.Commitment, blinding pedersen.Blinding) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	bal, ok := e.balances[account]
	if !ok {
		return ErrUnknownAccount
	}
	bal.ciphertext = bal.ciphertext.Add(ct)
	bal.commitment = bal.commitment.Add(com)
	bal.blinding = bal.blinding.Add(blinding)
	bal.total += amount
	return nil
}

func (e *Engine) debit(account string, amount uint64, ct *elgamal.Ciphertext, com *pedersen.Commitment, blinding pedersen.Blinding) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	bal, ok := e.balances[account]
	if !ok {
		return ErrUnknownAccount
	}
	if bal.total < amount {
		return ErrInsufficientFunds
	}
	bal.ciphertext = bal.ciphertext.Sub(ct)
	bal.commitment = bal.commitment.Sub(com)
	bal.blinding = bal.blinding.Sub(blinding)
	bal.total -= amount
	return nil
}
