package cache

import (
	"io/fs"
	"time"
)

// Option configures a cache backend. Options a backend has no use for are
// ignored.
type Option func(*options)

type options struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
	prefix          string
	fileMode        fs.FileMode
}

func newOptions(cleanupInterval time.Duration, opts []Option) *options {
	o := &options{
		defaultTTL:      time.Hour,
		cleanupInterval: cleanupInterval,
		fileMode:        0o644,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ttl resolves the TTL passed to Set: zero means the default, negative means
// no expiry and is returned as zero.
func (o *options) ttl(d time.Duration) time.Duration {
	if d == 0 {
		d = o.defaultTTL
	}
	return max(d, 0)
}

// WithDefaultTTL sets the expiry used when Set is called with a zero TTL.
// A negative value stores such entries without expiry. Default: 1 hour.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) { o.defaultTTL = d }
}

// WithCleanupInterval sets how often the memory and file caches sweep expired
// entries. Zero disables the sweep; expired entries are then dropped on read.
// Defaults: 1 minute for memory, 10 minutes for files.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithMaxEntries bounds the memory cache. When full, the least recently used
// entry is evicted. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithPrefix namespaces Redis keys as "prefix:key". Clear then only removes
// keys under the prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithFileMode sets the permissions of file cache entries. Default: 0644.
func WithFileMode(mode fs.FileMode) Option {
	return func(o *options) { o.fileMode = mode }
}
