package viewingkey

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

// ErrGrantNotFound is returned when a grant id is unknown to the manager.
var ErrGrantNotFound = errors.New("viewingkey: grant not found")

// Manager issues, validates and revokes viewing keys on behalf of a balance
// owner. It is safe for concurrent use.
type Manager struct {
	lock   sync.RWMutex
	grants map[uuid.UUID]*ViewingKey
	clock  func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock replaces the time source, mainly for tests.
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.clock = clock
	}
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		grants: make(map[uuid.UUID]*ViewingKey),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue binds the granter and grantee public keys to a permission set for
// the given lifetime. Requests for permissions outside the read-only space
// fail with ErrInvalidViewingKey.
func (m *Manager) Issue(granter, grantee curve.Point, perms Permission, ttl time.Duration) (*ViewingKey, error) {
	if granter == nil || granter.IsIdentity() || grantee == nil || grantee.IsIdentity() {
		return nil, errors.WithMessage(ErrInvalidViewingKey, "nil or identity party key")
	}
	if perms == 0 || perms&^AllPermissions != 0 {
		return nil, errors.WithMessage(ErrInvalidViewingKey, "permissions outside the read-only space")
	}
	if ttl <= 0 {
		return nil, errors.WithMessage(ErrInvalidViewingKey, "non-positive lifetime")
	}

	now := m.clock()
	key := &ViewingKey{
		ID:          uuid.New(),
		Granter:     granter,
		Grantee:     grantee,
		Permissions: perms,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}

	m.lock.Lock()
	m.grants[key.ID] = key
	m.lock.Unlock()

	return key, nil
}

// Validate reports whether the grant id currently allows perm. Unknown,
// revoked and expired grants all validate false; Validate never fails.
func (m *Manager) Validate(id uuid.UUID, perm Permission) bool {
	m.lock.RLock()
	key, ok := m.grants[id]
	m.lock.RUnlock()
	if !ok {
		return false
	}
	return key.ValidAt(m.clock(), perm)
}

// Revoke marks the grant revoked. It is idempotent and irreversible.
func (m *Manager) Revoke(id uuid.UUID) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	key, ok := m.grants[id]
	if !ok {
		return ErrGrantNotFound
	}
	key.Revoked = true
	return nil
}

// Get returns the grant by id.
func (m *Manager) Get(id uuid.UUID) (*ViewingKey, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	key, ok := m.grants[id]
	if !ok {
		return nil, ErrGrantNotFound
	}
	return key, nil
}

// Purge removes grants that expired before the cutoff, returning how many
// were dropped. Revoked grants are kept until they expire so that audits can
// still observe the revocation.
func (m *Manager) Purge(cutoff time.Time) int {
	m.lock.Lock()
	defer m.lock.Unlock()

	n := 0
	for id, key := range m.grants {
		if key.ExpiresAt.Before(cutoff) {
			delete(m.grants, id)
			n++
		}
	}
	return n
}
