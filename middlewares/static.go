package middlewares

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// StaticConfig configures the static file middleware.
type StaticConfig struct {
	Prefix string // URL prefix the files are served under
	Index  string // File served for directory requests, "" disables
	MaxAge int    // Cache-Control max-age in seconds, 0 omits the header
}

// StaticOption configures StaticConfig.
type StaticOption func(*StaticConfig)

// WithStaticPrefix serves files under the given URL prefix.
func WithStaticPrefix(prefix string) StaticOption {
	return func(cfg *StaticConfig) {
		cfg.Prefix = "/" + strings.Trim(prefix, "/")
	}
}

// WithStaticIndex sets the file served for directory requests.
func WithStaticIndex(name string) StaticOption {
	return func(cfg *StaticConfig) {
		cfg.Index = name
	}
}

// WithStaticMaxAge sets the Cache-Control max-age in seconds.
func WithStaticMaxAge(seconds int) StaticOption {
	return func(cfg *StaticConfig) {
		cfg.MaxAge = max(seconds, 0)
	}
}

// Static returns a slot serving files from root for GET and HEAD requests.
// Requests outside the prefix, other methods and missing files fall through
// to the rest of the chain. It panics if root is nil.
func Static(root fs.FS, opts ...StaticOption) *slot.Slot {
	if root == nil {
		panic(ErrNilFS)
	}

	cfg := &StaticConfig{
		Prefix: "/",
		Index:  "index.html",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		if c.Method() != http.MethodGet && c.Method() != http.MethodHead {
			return next()
		}

		name, ok := staticName(c.Request().URL.Path, cfg.Prefix)
		if !ok {
			return next()
		}

		f, info, err := openStatic(root, name, cfg.Index)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return next()
			}
			return nil, err
		}
		defer f.Close()

		if cfg.MaxAge > 0 {
			c.SetHeader("Cache-Control", "public, max-age="+strconv.Itoa(cfg.MaxAge))
		}

		rs, ok := f.(io.ReadSeeker)
		if !ok {
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, err
			}
			rs = bytes.NewReader(data)
		}

		http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), rs)
		return nil, nil
	})
}

// staticName maps a URL path to a file name inside the served FS.
func staticName(urlPath, prefix string) (string, bool) {
	rest := urlPath
	if prefix != "/" {
		var found bool
		rest, found = strings.CutPrefix(urlPath, prefix)
		if !found || (rest != "" && rest[0] != '/') {
			return "", false
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+rest), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// openStatic opens name, resolving directories to their index file.
func openStatic(root fs.FS, name, index string) (fs.File, fs.FileInfo, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	if !info.IsDir() {
		return f, info, nil
	}
	_ = f.Close()

	if index == "" {
		return nil, nil, fs.ErrNotExist
	}
	return openStatic(root, path.Join(name, index), "")
}
