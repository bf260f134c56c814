// Package viewingkey manages time-bounded, revocable, read-only disclosure
// grants over confidential balances. Grants never carry spend authority by
// construction: the permission space contains only read and disclosure
// capabilities.
package viewingkey

import (
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

// Permission is a set of read-only capabilities carried by a viewing key.
type Permission uint8

const (
	// PermViewBalance allows reading the decrypted balance.
	PermViewBalance Permission = 1 << iota
	// PermViewTransactions allows listing the account's transfers.
	PermViewTransactions
	// PermDecryptAmounts allows decrypting individual transfer amounts.
	PermDecryptAmounts
)

// AllPermissions is the full read-only permission space. Bits outside it are
// rejected at issuance, which is what keeps spend authority structurally
// impossible to grant.
const AllPermissions = PermViewBalance | PermViewTransactions | PermDecryptAmounts

// ErrInvalidViewingKey is returned when a grant is expired, revoked, lacks
// the requested permission, or a caller asks for a permission outside the
// read-only space.
var ErrInvalidViewingKey = errors.New("viewingkey: invalid viewing key")

// Has reports whether p contains every bit of q.
func (p Permission) Has(q Permission) bool {
	return p&q == q
}

// ViewingKey grants its grantee read-only visibility into the granter's
// balance until it expires or is revoked.
type ViewingKey struct {
	ID      uuid.UUID
	Granter curve.Point
	Grantee curve.Point

	Permissions Permission
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Revoked     bool
}

// ValidAt reports whether the key grants perm at the given instant.
// Revocation wins over any remaining lifetime.
func (k *ViewingKey) ValidAt(now time.Time, perm Permission) bool {
	if k == nil || k.Revoked {
		return false
	}
	if now.After(k.ExpiresAt) {
		return false
	}
	return k.Permissions.Has(perm)
}

type rawViewingKey struct {
	ID          []byte
	Granter     []byte
	Grantee     []byte
	Permissions uint8
	IssuedAt    int64
	ExpiresAt   int64
	Revoked     bool
}

// MarshalBinary exports the grant for handing to the grantee. Only public
// keys appear in the encoding.
func (k *ViewingKey) MarshalBinary() ([]byte, error) {
	granter, err := k.Granter.MarshalBinary()
	if err != nil {
		return nil, err
	}
	grantee, err := k.Grantee.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&rawViewingKey{
		ID:          k.ID[:],
		Granter:     granter,
		Grantee:     grantee,
		Permissions: uint8(k.Permissions),
		IssuedAt:    k.IssuedAt.Unix(),
		ExpiresAt:   k.ExpiresAt.Unix(),
		Revoked:     k.Revoked,
	})
}

// UnmarshalViewingKey decodes a grant exported by MarshalBinary.
func UnmarshalViewingKey(group curve.Curve, data []byte) (*ViewingKey, error) {
	raw := &rawViewingKey{}
	if err := cbor.Unmarshal(data, raw); err != nil {
		return nil, errors.WithMessage(err, "viewingkey: decode grant")
	}

	id, err := uuid.FromBytes(raw.ID)
	if err != nil {
		return nil, errors.WithMessage(err, "viewingkey: decode grant id")
	}
	granter := group.NewPoint()
	if err := granter.UnmarshalBinary(raw.Granter); err != nil {
		return nil, err
	}
	grantee := group.NewPoint()
	if err := grantee.UnmarshalBinary(raw.Grantee); err != nil {
		return nil, err
	}

	return &ViewingKey{
		ID:          id,
		Granter:     granter,
		Grantee:     grantee,
		Permissions: Permission(raw.Permissions),
		IssuedAt:    time.Unix(raw.IssuedAt, 0).UTC(),
		ExpiresAt:   time.Unix(raw.ExpiresAt, 0).UTC(),
		Revoked:     raw.Revoked,
	}, nil
}
