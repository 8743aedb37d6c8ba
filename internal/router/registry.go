package router

import (
	"context"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Loader yields the values a source file exports.
type Loader interface {
	Load(ctx context.Context, file string) ([]any, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, file string) ([]any, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, file string) ([]any, error) {
	return f(ctx, file)
}

// Registry records exported routers by the source file that declared them.
// Go has no dynamic import, so a package declaring routers exports them
// from its own files and the parser finds them by path. The package still
// has to be linked into the binary, usually with a blank import.
type Registry struct {
	exports map[string][]any
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{exports: make(map[string][]any)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by Export.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Export records v in the default registry under the caller's file and returns it.
//
// Example:
//
//	// routes/users.go
//	var Users = router.Export(router.New(router.WithPrefix("/users")).
//	    Get("/:id", router.Config{Action: showUser}))
func Export[T any](v T) T {
	return ExportFrom(1, v)
}

// ExportFrom is Export for wrappers: skip counts the stack frames between the
// declaring file and the caller of ExportFrom.
func ExportFrom[T any](skip int, v T) T {
	_, file, _, ok := runtime.Caller(skip + 1)
	if ok {
		defaultRegistry.Add(file, v)
	}
	return v
}

// Add records values under file.
func (r *Registry) Add(file string, values ...any) {
	file = filepath.Clean(file)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.exports[file] = append(r.exports[file], values...)
}

// Load returns the values recorded for file. Unknown files export nothing.
// Files recorded with a module-relative path (binaries built with -trimpath)
// are matched by suffix.
func (r *Registry) Load(_ context.Context, file string) ([]any, error) {
	file = filepath.Clean(file)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.exports[file]; ok {
		return slices.Clone(v), nil
	}
	for recorded, v := range r.exports {
		if !filepath.IsAbs(recorded) && strings.HasSuffix(file, string(filepath.Separator)+recorded) {
			return slices.Clone(v), nil
		}
	}
	return nil, nil
}

// Files returns every file with recorded exports.
func (r *Registry) Files() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.exports))
	for f := range r.exports {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
