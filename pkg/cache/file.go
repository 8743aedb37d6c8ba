package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const fileExt = ".cache"

// fileEnvelope is the on-disk form of an entry.
type fileEnvelope struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at,omitempty"` // unix nanoseconds, 0 = never
	Data      []byte `json:"data"`
}

func (e fileEnvelope) expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixNano() > e.ExpiresAt
}

// File is a cache keeping one file per key under a directory.
// Entries survive restarts and can be shared by processes on one host.
// Writes are atomic: a temp file is renamed over the entry.
type File[V any] struct {
	dir       string
	opts      *options
	marshaler Marshaler[V]
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
}

// NewFile creates a file cache rooted at dir, creating the directory if needed.
// A nil Marshaler means JSON.
//
// Example:
//
//	c, err := cache.NewFile[Page]("/var/cache/pages", nil,
//	    cache.WithDefaultTTL(time.Hour),
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
func NewFile[V any](dir string, m Marshaler[V], opts ...Option) (*File[V], error) {
	o := newOptions(10*time.Minute, opts)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	if m == nil {
		m = JSONMarshaler[V]{}
	}

	f := &File[V]{
		dir:       dir,
		opts:      o,
		marshaler: m,
		done:      make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go f.janitor()
	}

	return f, nil
}

// Get retrieves a value by key.
// Returns ErrNotFound if the key does not exist or has expired.
func (f *File[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	f.mu.RLock()
	env, err := f.read(f.path(key))
	f.mu.RUnlock()
	if err != nil {
		return zero, err
	}

	if env.Key != key {
		return zero, ErrNotFound
	}
	if env.expired(time.Now()) {
		f.mu.Lock()
		_ = f.remove(f.path(key))
		f.mu.Unlock()
		return zero, ErrNotFound
	}

	return f.marshaler.Unmarshal(env.Data)
}

// Set stores a value with the given TTL.
func (f *File[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	data, err := f.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	env := fileEnvelope{Key: key, Data: data}
	if ttl = f.opts.ttl(ttl); ttl > 0 {
		env.ExpiresAt = time.Now().Add(ttl).UnixNano()
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	return f.write(f.path(key), raw)
}

// Delete removes a key from the cache.
func (f *File[V]) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	return f.remove(f.path(key))
}

// Has checks whether a key exists and has not expired.
func (f *File[V]) Has(_ context.Context, key string) (bool, error) {
	f.mu.RLock()
	env, err := f.read(f.path(key))
	f.mu.RUnlock()
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return env.Key == key && !env.expired(time.Now()), nil
}

// Clear removes every entry file from the directory.
func (f *File[V]) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return err
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if err := f.remove(filepath.Join(f.dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close stops the janitor. Files stay on disk. Close is idempotent.
func (f *File[V]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	close(f.done)

	return nil
}

// path maps a key to its file. Keys are hashed so any string is a safe name.
func (f *File[V]) path(key string) string {
	return filepath.Join(f.dir, strconv.FormatUint(xxhash.Sum64String(key), 16)+fileExt)
}

func (f *File[V]) read(path string) (fileEnvelope, error) {
	var env fileEnvelope

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return env, ErrNotFound
	}
	if err != nil {
		return env, err
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		return env, errors.Join(ErrUnmarshal, err)
	}

	return env, nil
}

// write replaces path atomically. Caller must hold the write lock.
func (f *File[V]) write(path string, raw []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), f.opts.fileMode); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// remove deletes path; a missing file is not an error.
func (f *File[V]) remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *File[V]) janitor() {
	ticker := time.NewTicker(f.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.deleteExpired()
		}
	}
}

// deleteExpired removes expired and unreadable entry files.
func (f *File[V]) deleteExpired() {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return
	}

	now := time.Now()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		path := filepath.Join(f.dir, e.Name())
		env, err := f.read(path)
		if errors.Is(err, ErrUnmarshal) || (err == nil && env.expired(now)) {
			_ = f.remove(path)
		}
	}
}

var _ Cache[any] = (*File[any])(nil)
