// Package stripedlock provides a fixed set of mutexes selected by key hash.
//
// Operations on the same key are serialized; operations on different keys
// only contend when their hashes collide on the same stripe.
package stripedlock

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 256

// Lock is a striped mutex keyed by string.
type Lock struct {
	stripes []sync.Mutex
}

// New returns a Lock with n stripes. n <= 0 selects the default of 256.
func New(n int) *Lock {
	if n <= 0 {
		n = defaultStripes
	}
	return &Lock{stripes: make([]sync.Mutex, n)}
}

// Acquire locks the stripe owning key and returns its unlock function.
func (l *Lock) Acquire(key string) func() {
	m := &l.stripes[l.index(key)]
	m.Lock()
	return m.Unlock
}

func (l *Lock) index(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(l.stripes)))
}
