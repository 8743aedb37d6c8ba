package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryItem[V any] struct {
	key     string
	value   V
	expires time.Time // zero: no expiry
}

func (it *memoryItem[V]) expiredAt(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// Memory is an in-process cache with per-entry expiry and optional LRU
// bounds. The front of the recency list is the most recently used entry.
type Memory[V any] struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	recency *list.List
	opts    *options
	onEvict func(key string, value V)
	stop    chan struct{}
	closed  bool
}

// NewMemory creates an in-memory cache. A janitor goroutine sweeps expired
// entries until Close is called.
//
// Example:
//
//	limiters := cache.NewMemory[*rate.Limiter](
//	    cache.WithDefaultTTL(10*time.Minute),
//	    cache.WithMaxEntries(100_000),
//	)
//	defer limiters.Close()
func NewMemory[V any](opts ...Option) *Memory[V] {
	m := &Memory[V]{
		index:   make(map[string]*list.Element),
		recency: list.New(),
		opts:    newOptions(time.Minute, opts),
		stop:    make(chan struct{}),
	}
	if m.opts.cleanupInterval > 0 {
		go m.sweepEvery(m.opts.cleanupInterval)
	}
	return m
}

// SetEvictCallback registers fn to be called whenever an entry leaves the
// cache: LRU eviction, expiry, Delete and Clear. fn runs under the cache lock
// and must not call back into the cache.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

// live returns the element for key, dropping it first if it has expired.
// Caller holds m.mu.
func (m *Memory[V]) live(key string, now time.Time) *list.Element {
	el, ok := m.index[key]
	if !ok {
		return nil
	}
	if el.Value.(*memoryItem[V]).expiredAt(now) {
		m.drop(el)
		return nil
	}
	return el
}

// Get returns the value stored under key and marks it as recently used.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el := m.live(key, time.Now())
	if el == nil {
		var zero V
		return zero, ErrNotFound
	}
	m.recency.MoveToFront(el)
	return el.Value.(*memoryItem[V]).value, nil
}

// Set stores value under key.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var expires time.Time
	if d := m.opts.ttl(ttl); d > 0 {
		expires = time.Now().Add(d)
	}

	if el, ok := m.index[key]; ok {
		it := el.Value.(*memoryItem[V])
		it.value, it.expires = value, expires
		m.recency.MoveToFront(el)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.index) >= m.opts.maxEntries {
		if oldest := m.recency.Back(); oldest != nil {
			m.drop(oldest)
		}
	}
	m.index[key] = m.recency.PushFront(&memoryItem[V]{key: key, value: value, expires: expires})
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.index[key]; ok {
		m.drop(el)
	}
	return nil
}

// Has reports whether key holds an unexpired value. It does not affect
// recency.
func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(key, time.Now()) != nil, nil
}

// Clear removes every entry.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for el := m.recency.Front(); el != nil; {
		next := el.Next()
		m.drop(el)
		el = next
	}
	return nil
}

// Close stops the janitor. Later writes fail with ErrClosed; reads keep
// working. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

func (m *Memory[V]) sweepEvery(d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-t.C:
			m.sweep(now)
		}
	}
}

// sweep drops expired entries, oldest first.
func (m *Memory[V]) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for el := m.recency.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memoryItem[V]).expiredAt(now) {
			m.drop(el)
		}
		el = prev
	}
}

// drop unlinks el and reports it to the evict callback. Caller holds m.mu.
func (m *Memory[V]) drop(el *list.Element) {
	it := m.recency.Remove(el).(*memoryItem[V])
	delete(m.index, it.key)
	if m.onEvict != nil {
		m.onEvict(it.key, it.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
