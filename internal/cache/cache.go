// Package cache holds the canonical client-side copy of every domain entity
// and mediates all mutation through an optimistic apply/commit/rollback
// contract.
//
// The cache is the single shared mutable resource in the coaching core. No
// component mutates entity state directly; writers call OptimisticApply to
// speculate, then Commit with server truth or Rollback on remote failure.
//
// INVARIANTS:
//   - At most one outstanding optimistic mutation per entity kind. A second
//     attempt before the first resolves fails with ConcurrentMutationError
//     rather than silently interleaving lost updates.
//   - Readers never observe a partially mutated entity: the value swap
//     happens under the lock, and subscribers are notified synchronously
//     after each apply/commit/rollback.
//   - A rollback token outlives navigation: if the caller abandons an
//     in-flight mutation, the token still restores last-known-good state
//     when the remote response eventually arrives.
package cache

import (
	"log/slog"
	"sync"

	"github.com/lifesprint/sensai/internal/entity"
)

// Subscriber is notified with the kind that changed after every apply,
// commit, and rollback. Notification is synchronous so UI layers re-render
// without polling.
type Subscriber func(kind entity.Kind)

// Token identifies one outstanding optimistic mutation. Returned by
// OptimisticApply; redeemed by Rollback. A token committed over becomes
// inert - Rollback on it is a no-op.
type Token struct {
	kind  entity.Kind
	prior any
	live  bool
}

// Kind returns the entity kind the token guards.
func (t *Token) Kind() entity.Kind {
	return t.kind
}

// Cache is the in-memory normalized store of domain entities.
type Cache struct {
	mu          sync.Mutex
	values      map[entity.Kind]any
	pending     map[entity.Kind]*Token
	subscribers []Subscriber
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		values:  make(map[entity.Kind]any),
		pending: make(map[entity.Kind]*Token),
	}
}

// Get returns the current cached value for a kind, or (nil, false) when
// nothing has been cached yet. Never fails.
func (c *Cache) Get(kind entity.Kind) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[kind]
	return v, ok
}

// GetAs fetches and type-asserts a cached value in one step.
// Returns the zero value and false when the kind is absent or holds a
// different type.
func GetAs[T any](c *Cache, kind entity.Kind) (T, bool) {
	var zero T
	v, ok := c.Get(kind)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// OptimisticApply applies a speculative local mutation and returns a
// rollback token. The mutate function receives the current value (nil when
// the kind is uncached) and returns the speculative replacement. It runs
// with the cache lock held and must not call back into the cache.
//
// Fails with ConcurrentMutationError while another optimistic mutation on
// the same kind is outstanding, and with UnknownKindError for kinds outside
// entity.ValidKinds.
func (c *Cache) OptimisticApply(kind entity.Kind, mutate func(current any) any) (*Token, error) {
	if !entity.ValidKinds[kind] {
		return nil, &UnknownKindError{Kind: kind}
	}

	c.mu.Lock()
	if _, busy := c.pending[kind]; busy {
		c.mu.Unlock()
		return nil, &ConcurrentMutationError{Kind: kind}
	}

	prior := c.values[kind]
	token := &Token{kind: kind, prior: prior, live: true}
	c.pending[kind] = token
	c.values[kind] = mutate(prior)
	c.mu.Unlock()

	slog.Debug("optimistic mutation applied", "kind", kind)
	c.notify(kind)
	return token, nil
}

// Commit replaces the cached value with server truth and clears any pending
// optimistic marker for the kind. The canonical value always wins, whether
// or not an optimistic mutation preceded it.
func (c *Cache) Commit(kind entity.Kind, canonical any) {
	c.mu.Lock()
	if token, ok := c.pending[kind]; ok {
		token.live = false
		delete(c.pending, kind)
	}
	c.values[kind] = canonical
	c.mu.Unlock()

	slog.Debug("entity committed", "kind", kind)
	c.notify(kind)
}

// Update applies a local, non-speculative mutation. Unlike Commit it does
// not carry server truth: while an optimistic mutation is outstanding on the
// kind it fails with ConcurrentMutationError instead of invalidating the
// pending rollback token. The mutate function receives the current value
// (nil when the kind is uncached) and runs with the cache lock held, so it
// must not call back into the cache.
func (c *Cache) Update(kind entity.Kind, mutate func(current any) any) error {
	if !entity.ValidKinds[kind] {
		return &UnknownKindError{Kind: kind}
	}

	c.mu.Lock()
	if _, busy := c.pending[kind]; busy {
		c.mu.Unlock()
		return &ConcurrentMutationError{Kind: kind}
	}
	c.values[kind] = mutate(c.values[kind])
	c.mu.Unlock()

	slog.Debug("local mutation applied", "kind", kind)
	c.notify(kind)
	return nil
}

// Rollback undoes a speculative mutation if it has not been committed over.
// Safe to call exactly once per token from any code path, including after
// the caller has navigated away.
func (c *Cache) Rollback(token *Token) {
	if token == nil {
		return
	}

	c.mu.Lock()
	if !token.live || c.pending[token.kind] != token {
		c.mu.Unlock()
		return
	}
	token.live = false
	delete(c.pending, token.kind)
	c.values[token.kind] = token.prior
	c.mu.Unlock()

	slog.Debug("optimistic mutation rolled back", "kind", token.kind)
	c.notify(token.kind)
}

// Pending reports whether an optimistic mutation is outstanding for a kind.
func (c *Cache) Pending(kind entity.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[kind]
	return ok
}

// Subscribe registers a change listener and returns its unsubscribe
// function. Listeners must not mutate the cache re-entrantly.
func (c *Cache) Subscribe(fn Subscriber) func() {
	c.mu.Lock()
	idx := len(c.subscribers)
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.subscribers) {
			c.subscribers[idx] = nil
		}
	}
}

// notify invokes subscribers outside the lock. The cached value for the kind
// is already consistent by the time any subscriber runs.
func (c *Cache) notify(kind entity.Kind) {
	c.mu.Lock()
	subs := make([]Subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(kind)
		}
	}
}
