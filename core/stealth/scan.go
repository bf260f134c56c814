package stealth

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

// Announcement is the public record broadcast alongside a payment: the
// on-ledger destination and the ephemeral public key needed to recognize it.
type Announcement struct {
	EphemeralPublicKey curve.Point
	Destination        curve.Point
	ViewTag            byte
}

// ScanOptions configures a payment scan.
type ScanOptions struct {
	// Parallelism caps concurrent candidate checks. Zero means GOMAXPROCS.
	Parallelism int
	// SkipViewTags disables the one-byte fast path and forces the full
	// ECDH check for every candidate.
	SkipViewTags bool
}

// Scan checks every candidate announcement against the keys' meta-address
// and returns the payments addressed to them, in candidate order.
//
// Candidates are independent, so the scan fans out across them; it is
// idempotent for a fixed candidate list and restartable after cancellation.
func (k *Keys) Scan(ctx context.Context, announcements []*Announcement, opts *ScanOptions) ([]*Payment, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	meta := k.MetaAddress()
	viewSecret := k.View.Secret()

	matches := make([]*Payment, len(announcements))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	for i, ann := range announcements {
		i, ann := i, ann
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if ann == nil || ann.EphemeralPublicKey == nil || ann.Destination == nil {
				return nil
			}

			shared := viewSecret.Act(ann.EphemeralPublicKey)
			offset, tag := deriveOffset(shared)
			if !opts.SkipViewTags && tag != ann.ViewTag {
				return nil
			}
			expected := meta.SpendPublicKey.Add(offset.ActOnBase())
			if !expected.Equal(ann.Destination) {
				return nil
			}
			matches[i] = &Payment{
				Address:            ann.Destination,
				EphemeralPublicKey: ann.EphemeralPublicKey,
				ViewTag:            ann.ViewTag,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Merge by candidate identity, not completion order.
	payments := make([]*Payment, 0, len(matches))
	for _, p := range matches {
		if p != nil {
			payments = append(payments, p)
		}
	}
	return payments, nil
}
