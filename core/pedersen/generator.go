package pedersen

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/jskoiz/zeraprivacy/core/math/curve"
)

var (
	generatorMu sync.Mutex
	generators  = map[string]curve.Point{}
)

// GeneratorH returns the second Pedersen generator for the group. It is
// derived by try-and-increment hashing so that its discrete log with respect
// to G is unknown, which the binding property depends on.
func GeneratorH(group curve.Curve) curve.Point {
	generatorMu.Lock()
	defer generatorMu.Unlock()

	if h, ok := generators[group.Name()]; ok {
		return h
	}

	buf := make([]byte, curve.PointBytes)
	buf[0] = 0x02
	for ctr := 0; ctr < 256; ctr++ {
		digest := sha3.Sum256([]byte(fmt.Sprintf("zera/pedersen/generator-h/%s/%d", group.Name(), ctr)))
		copy(buf[1:], digest[:])
		h := group.NewPoint()
		if err := h.UnmarshalBinary(buf); err == nil && !h.IsIdentity() {
			generators[group.Name()] = h
			return h
		}
	}
	// Each attempt succeeds for roughly half of all digests, so 256 misses
	// in a row means the curve implementation is broken.
	panic("pedersen: unable to derive generator H")
}
