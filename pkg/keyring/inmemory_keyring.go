package keyring

import (
	"errors"
	"sync"

	"github.com/jskoiz/zeraprivacy/pkg/common/keyring"
)

var (
	ErrInvalidAccount = errors.New("keyring: invalid account")
	ErrInvalidRole    = errors.New("keyring: invalid role")
	ErrEntryNotFound  = errors.New("keyring: entry not found")
)

type entries map[string]*keyring.Entry

// InMemoryKeyring maps account to role to the SKI of the key serving it.
type InMemoryKeyring struct {
	lock     sync.RWMutex
	accounts map[string]entries
}

func NewInMemoryKeyring() *InMemoryKeyring {
	return &InMemoryKeyring{
		accounts: make(map[string]entries),
	}
}

func (kr *InMemoryKeyring) Bind(ski, account, role string) error {
	if account == "" {
		return ErrInvalidAccount
	}
	if role == "" {
		return ErrInvalidRole
	}

	kr.lock.Lock()
	defer kr.lock.Unlock()

	if _, ok := kr.accounts[account]; !ok {
		kr.accounts[account] = make(entries)
	}
	kr.accounts[account][role] = &keyring.Entry{
		Account: account,
		Role:    role,
		SKI:     ski,
	}
	return nil
}

func (kr *InMemoryKeyring) Lookup(account, role string) (*keyring.Entry, error) {
	kr.lock.RLock()
	defer kr.lock.RUnlock()

	es, ok := kr.accounts[account]
	if !ok {
		return nil, ErrEntryNotFound
	}
	e, ok := es[role]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

func (kr *InMemoryKeyring) LookupAccount(account string) ([]*keyring.Entry, error) {
	kr.lock.RLock()
	defer kr.lock.RUnlock()

	es, ok := kr.accounts[account]
	if !ok {
		return nil, ErrEntryNotFound
	}
	result := make([]*keyring.Entry, 0, len(es))
	for _, e := range es {
		result = append(result, e)
	}
	return result, nil
}

func (kr *InMemoryKeyring) Unbind(account, role string) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	es, ok := kr.accounts[account]
	if !ok {
		return ErrEntryNotFound
	}
	delete(es, role)
	return nil
}

func (kr *InMemoryKeyring) UnbindAccount(account string) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	delete(kr.accounts, account)
	return nil
}
