package elgamal

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

// DecryptOptions configures the discrete-log search performed on decryption.
type DecryptOptions struct {
	// MaxAmount is the inclusive upper bound of the search. Amounts above
	// it fail with ErrDecryptionFailed. Bounds whose giant-step table
	// would exceed maxBabySteps entries (around 2^42) fail with
	// ErrSearchBoundTooLarge.
	MaxAmount uint64
	// GiantStepThreshold selects the strategy: bounds at or below it use a
	// parallel linear walk, larger bounds use baby-step giant-step.
	GiantStepThreshold uint64
	// Parallelism caps the workers of the linear walk. Zero means
	// GOMAXPROCS.
	Parallelism int
}

// DefaultDecryptOptions covers typical lamport-denominated balances.
// Callers holding larger balances must widen MaxAmount explicitly.
func DefaultDecryptOptions() *DecryptOptions {
	return &DecryptOptions{
		MaxAmount:          1 << 32,
		GiantStepThreshold: 1 << 16,
		Parallelism:        0,
	}
}

// ErrSearchBoundTooLarge is returned when MaxAmount would need a giant-step
// table beyond maxBabySteps entries. The bound fails fast instead of
// exhausting memory.
var ErrSearchBoundTooLarge = errors.New("elgamal: search bound too large for giant-step table")

// maxBabySteps caps the giant-step table at 2^21 entries, putting the
// practical decryption ceiling near 2^42. Larger amounts need an alternate
// resolution strategy, not a wider search.
const maxBabySteps = 1 << 21

// errFound aborts the remaining linear-walk workers once a match is known.
var errFound = errors.New("elgamal: match found")

// cancelCheckInterval is how many point additions a worker performs between
// context checks.
const cancelCheckInterval = 1 << 12

func dlog(ctx context.Context, target curve.Point, group curve.Curve, opts *DecryptOptions) (uint64, error) {
	if target.IsIdentity() {
		return 0, nil
	}
	if opts.MaxAmount > opts.GiantStepThreshold {
		return giantStepSearch(ctx, target, group, opts.MaxAmount)
	}
	return linearSearch(ctx, target, group, opts)
}

// linearSearch walks v⋅G for v in [0, MaxAmount], split into one contiguous
// chunk per worker. Each worker pays one scalar multiplication to land on its
// chunk start, then advances by point additions.
func linearSearch(ctx context.Context, target curve.Point, group curve.Curve, opts *DecryptOptions) (uint64, error) {
	workers := opts.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := opts.MaxAmount/uint64(workers) + 1

	var (
		mu     sync.Mutex
		found  bool
		amount uint64
	)

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := uint64(w) * chunk
		eg.Go(func() error {
			if start > opts.MaxAmount {
				return nil
			}
			end := start + chunk
			if end > opts.MaxAmount+1 {
				end = opts.MaxAmount + 1
			}
			base := group.NewBasePoint()
			cur := group.NewScalar().SetUint64(start).ActOnBase()
			for v := start; v < end; v++ {
				if v%cancelCheckInterval == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				if cur.Equal(target) {
					mu.Lock()
					found, amount = true, v
					mu.Unlock()
					return errFound
				}
				cur = cur.Add(base)
			}
			return nil
		})
	}

	err := eg.Wait()
	if found {
		return amount, nil
	}
	if err != nil && !errors.Is(err, errFound) {
		return 0, err
	}
	return 0, ErrDecryptionFailed
}

// giantStepSearch runs baby-step giant-step: it tabulates j⋅G for
// j < ceil(sqrt(bound)) once, then steps target - i⋅m⋅G through the table.
// Memory is O(sqrt(bound)) and time O(sqrt(bound)) group operations.
func giantStepSearch(ctx context.Context, target curve.Point, group curve.Curve, bound uint64) (uint64, error) {
	m := uint64(math.Ceil(math.Sqrt(float64(bound) + 1)))
	if m == 0 {
		m = 1
	}
	if m > maxBabySteps {
		return 0, ErrSearchBoundTooLarge
	}

	base := group.NewBasePoint()
	babies := make(map[string]uint64, m)
	cur := group.NewPoint()
	for j := uint64(0); j < m; j++ {
		raw, err := cur.MarshalBinary()
		if err != nil {
			return 0, err
		}
		babies[string(raw)] = j
		cur = cur.Add(base)
	}

	giant := group.NewScalar().SetUint64(m).ActOnBase().Negate()
	gamma := target
	for i := uint64(0); i*m <= bound; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			default:
			}
		}
		raw, err := gamma.MarshalBinary()
		if err != nil {
			return 0, err
		}
		if j, ok := babies[string(raw)]; ok {
			v := i*m + j
			if v <= bound {
				return v, nil
			}
		}
		gamma = gamma.Add(giant)
	}
	return 0, ErrDecryptionFailed
}
