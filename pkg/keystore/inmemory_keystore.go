package keystore

import (
	"errors"

	"github.com/jskoiz/zeraprivacy/pkg/common/keyring"
	"github.com/jskoiz/zeraprivacy/pkg/common/vault"
)

var (
	ErrKeyNotFound = errors.New("keystore: key not found")
)

// InMemoryKeystore stores key material in a vault and resolves it through a
// keyring index.
type InMemoryKeystore struct {
	v  vault.Vault
	kr keyring.Index
}

func NewInMemoryKeystore(v vault.Vault, kr keyring.Index) *InMemoryKeystore {
	return &InMemoryKeystore{
		v:  v,
		kr: kr,
	}
}

func (ks *InMemoryKeystore) Import(ski string, key []byte, account, role string) error {
	// store key material to the vault
	if err := ks.v.Import(ski, key); err != nil {
		return err
	}

	// bind the key to the account and role it serves
	if err := ks.kr.Bind(ski, account, role); err != nil {
		return err
	}

	return nil
}

func (ks *InMemoryKeystore) Get(account, role string) ([]byte, error) {
	e, err := ks.kr.Lookup(account, role)
	if err != nil {
		return nil, ErrKeyNotFound
	}

	return ks.v.Get(e.SKI)
}

func (ks *InMemoryKeystore) Delete(account, role string) error {
	e, err := ks.kr.Lookup(account, role)
	if err != nil {
		return ErrKeyNotFound
	}

	if err := ks.v.Delete(e.SKI); err != nil {
		return err
	}

	return ks.kr.Unbind(account, role)
}

func (ks *InMemoryKeystore) DeleteAccount(account string) error {
	es, err := ks.kr.LookupAccount(account)
	if err != nil {
		return ErrKeyNotFound
	}
	for _, e := range es {
		if err := ks.v.Delete(e.SKI); err != nil {
			return err
		}
	}

	return ks.kr.UnbindAccount(account)
}
