package watch

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Digest remembers the hash of the last rendered report.
type Digest struct {
	mu   sync.Mutex
	sum  uint64
	seen bool
}

// Changed records b and reports whether it differs from the previous call's bytes.
// The first call always reports a change.
func (d *Digest) Changed(b []byte) bool {
	sum := xxhash.Sum64(b)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen && d.sum == sum {
		return false
	}
	d.sum = sum
	d.seen = true
	return true
}
