package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/logger"
)

// Mountable is a router type a Parser can register.
type Mountable interface {
	*Router | *Commander
	GenerateSlot(cut slot.ID) *slot.Slot
}

// Parser collects routers of one type, compiles each instance once and keeps
// the resulting slots in registration order.
type Parser[R Mountable] struct {
	cut     func() slot.ID
	loader  Loader
	logger  *slog.Logger
	seen    map[R]struct{}
	settled chan struct{}
	mounted []R
	out     []*slot.Slot
	level   int
	frozen  bool
	mu      sync.Mutex
}

// ParserOption configures a Parser.
type ParserOption func(*parserConfig)

type parserConfig struct {
	loader Loader
	logger *slog.Logger
}

// WithLoader sets the loader used by ParsePath. Defaults to DefaultRegistry().
func WithLoader(l Loader) ParserOption {
	return func(c *parserConfig) {
		if l != nil {
			c.loader = l
		}
	}
}

// WithParserLogger sets the logger for registration events.
func WithParserLogger(l *slog.Logger) ParserOption {
	return func(c *parserConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewParser creates a parser. cut is called for every new router to obtain
// the current global cut point; it may be nil.
func NewParser[R Mountable](cut func() slot.ID, opts ...ParserOption) *Parser[R] {
	cfg := &parserConfig{
		loader: defaultRegistry,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cut == nil {
		cut = func() slot.ID { return 0 }
	}

	settled := make(chan struct{})
	close(settled)

	return &Parser[R]{
		cut:     cut,
		loader:  cfg.loader,
		logger:  cfg.logger,
		seen:    make(map[R]struct{}),
		settled: settled,
	}
}

// ParseRouter registers every value of type R not seen before and returns
// how many were added. Other values are ignored.
// It panics with ErrParserFrozen after Freeze.
func (p *Parser[R]) ParseRouter(values ...any) int {
	n, err := p.TryParseRouter(values...)
	if err != nil {
		panic(err)
	}
	return n
}

// TryParseRouter is ParseRouter returning ErrParserFrozen instead of panicking.
func (p *Parser[R]) TryParseRouter(values ...any) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return 0, ErrParserFrozen
	}

	var zero R
	added := 0
	for _, v := range values {
		r, ok := v.(R)
		if !ok || r == zero {
			continue
		}
		if _, dup := p.seen[r]; dup {
			continue
		}
		p.seen[r] = struct{}{}
		p.mounted = append(p.mounted, r)
		p.out = append(p.out, r.GenerateSlot(p.cut()))
		added++
	}

	if added > 0 {
		p.logger.Debug("routers registered", slog.Int("added", added), slog.Int("total", len(p.out)))
	}
	return added, nil
}

// Freeze stops further registration and returns the compiled slots.
// Calls after the first return the same slots.
func (p *Parser[R]) Freeze() []*slot.Slot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frozen = true
	return slices.Clone(p.out)
}

// ParsePath resolves glob patterns (doublestar syntax, "**" included), loads
// the exports of every matched file and registers the routers among them.
// A pattern naming a directory covers every file below it.
//
// Level is raised for the duration of the call, failed or not, so
// concurrent calls can be awaited with Settled.
func (p *Parser[R]) ParsePath(ctx context.Context, patterns ...string) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	files, err := resolveFiles(patterns)
	if err != nil {
		return err
	}

	var errs []error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		exports, err := p.loader.Load(ctx, file)
		if err != nil {
			errs = append(errs, fmt.Errorf("router: load %s: %w", file, err))
			continue
		}
		if _, err := p.TryParseRouter(exports...); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return errors.Join(errs...)
}

// Level returns the number of ParsePath calls in flight.
func (p *Parser[R]) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Settled returns a channel that is closed once no ParsePath call is in flight.
func (p *Parser[R]) Settled() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Slots returns the compiled router slots in registration order.
func (p *Parser[R]) Slots() []*slot.Slot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.out)
}

// Mounted returns the registered routers in registration order.
func (p *Parser[R]) Mounted() []R {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.mounted)
}

// Len returns the number of registered routers.
func (p *Parser[R]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.out)
}

func (p *Parser[R]) enter() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return ErrParserFrozen
	}
	if p.level == 0 {
		p.settled = make(chan struct{})
	}
	p.level++
	return nil
}

func (p *Parser[R]) leave() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level--
	if p.level == 0 {
		close(p.settled)
	}
}

// resolveFiles expands patterns into a deduplicated list of absolute file paths.
func resolveFiles(patterns []string) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]struct{})
	)

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if _, ok := seen[abs]; !ok {
			seen[abs] = struct{}{}
			out = append(out, abs)
		}
		return nil
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			pattern = filepath.Join(pattern, "**", "*")
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("router: glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if err := add(m); err != nil {
				return nil, fmt.Errorf("router: resolve %q: %w", m, err)
			}
		}
	}
	return out, nil
}
