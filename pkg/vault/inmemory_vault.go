package vault

import (
	"errors"
	"sync"
)

var (
	ErrKeyNotFound = errors.New("vault: key not found")
)

// InMemoryVault holds serialized key material in process memory. Entries are
// stored and returned as private copies, so a caller zeroizing its own buffer
// cannot clobber the vault and vice versa, and deleted entries are wiped
// before they are released.
type InMemoryVault struct {
	lock sync.RWMutex
	keys map[string][]byte
}

func NewInMemoryVault() *InMemoryVault {
	return &InMemoryVault{
		keys: make(map[string][]byte),
	}
}

func (store *InMemoryVault) Import(ski string, key []byte) error {
	buf := make([]byte, len(key))
	copy(buf, key)

	store.lock.Lock()
	defer store.lock.Unlock()

	if old, ok := store.keys[ski]; ok {
		wipe(old)
	}
	store.keys[ski] = buf
	return nil
}

func (store *InMemoryVault) Get(ski string) ([]byte, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	key, ok := store.keys[ski]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}

func (store *InMemoryVault) Delete(ski string) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	if key, ok := store.keys[ski]; ok {
		wipe(key)
		delete(store.keys, ski)
	}
	return nil
}

func wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
