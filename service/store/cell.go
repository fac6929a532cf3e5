package store

import (
	"sync"

	"github.com/brojonat/walletdash/service/remotedata"
	"github.com/brojonat/walletdash/service/state"
)

// Identity is the key that scopes which remote resource a cell holds, e.g. a
// wallet address. The empty Identity means no wallet is connected.
type Identity string

// Present reports whether the identity is set.
func (id Identity) Present() bool {
	return id != ""
}

// String returns the identity as a plain string.
func (id Identity) String() string {
	return string(id)
}

// Cell holds the RemoteData state of one resource for one identity. Readers
// may Get and Subscribe; only a Dispatcher changes it.
//
// Every write carries a generation number. A write for an older generation
// than the cell has already seen is dropped, and a completion is only applied
// when it belongs to the current generation.
type Cell[V any] struct {
	name string

	mu       sync.RWMutex
	gen      uint64
	identity Identity
	data     remotedata.RemoteData[V]

	subs state.Subscribers
}

// NewCell returns a NotAsked cell. name is used in logs and metrics.
func NewCell[V any](name string) *Cell[V] {
	return &Cell[V]{
		name: name,
		data: remotedata.NotAsked[V](),
	}
}

// Name returns the cell name.
func (c *Cell[V]) Name() string {
	return c.name
}

// Get returns the current state.
func (c *Cell[V]) Get() remotedata.RemoteData[V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// Identity returns the identity the current state belongs to.
func (c *Cell[V]) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// Snapshot returns identity and state read together.
func (c *Cell[V]) Snapshot() (Identity, remotedata.RemoteData[V]) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity, c.data
}

// Subscribe registers fn to run after every state change.
func (c *Cell[V]) Subscribe(fn func()) func() {
	return c.subs.Add(fn)
}

// begin opens generation gen with the given identity and state. It returns
// false, changing nothing, when a newer generation already began.
func (c *Cell[V]) begin(gen uint64, id Identity, data remotedata.RemoteData[V]) bool {
	c.mu.Lock()
	if gen < c.gen {
		c.mu.Unlock()
		return false
	}
	c.gen = gen
	c.identity = id
	c.data = data
	c.mu.Unlock()

	c.subs.Notify()
	return true
}

// settle applies the outcome of generation gen. It returns false when gen is
// no longer current, in which case the outcome is discarded.
func (c *Cell[V]) settle(gen uint64, data remotedata.RemoteData[V]) bool {
	c.mu.Lock()
	if gen != c.gen || !remotedata.IsLoading(c.data) {
		c.mu.Unlock()
		return false
	}
	c.data = data
	c.mu.Unlock()

	c.subs.Notify()
	return true
}
