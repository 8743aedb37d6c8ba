package slot

import (
	"context"
	"path"
	"regexp"
	"slices"
	"strings"
)

// Request is the part of a web context skip conditions read.
type Request interface {
	Pathname() string
	Method() string
}

// Condition describes when a slot should be skipped.
// Only one kind is evaluated: Path and PathRegexp first, then Ext, then
// Method, then Custom.
type Condition struct {
	// Path lists literal request paths.
	Path []string
	// PathRegexp lists patterns matched against the request path.
	PathRegexp []*regexp.Regexp
	// Ext lists file extensions, with or without the leading dot.
	Ext []string
	// Method lists HTTP methods, case-insensitive.
	Method []string
	// Custom is an arbitrary predicate. It is the only kind command and
	// either slots accept.
	Custom func(ctx context.Context) bool
}

func (c Condition) webOnly() bool {
	return len(c.Path) > 0 || len(c.PathRegexp) > 0 || len(c.Ext) > 0 || len(c.Method) > 0
}

func (c Condition) predicate() func(ctx context.Context) bool {
	switch {
	case len(c.Path) > 0 || len(c.PathRegexp) > 0:
		literals := slices.Clone(c.Path)
		patterns := slices.Clone(c.PathRegexp)
		return func(ctx context.Context) bool {
			r, ok := ctx.(Request)
			if !ok {
				return false
			}
			p := r.Pathname()
			if slices.Contains(literals, p) {
				return true
			}
			for _, re := range patterns {
				if re.MatchString(p) {
					return true
				}
			}
			return false
		}

	case len(c.Ext) > 0:
		exts := make([]string, 0, len(c.Ext))
		for _, e := range c.Ext {
			if e != "" && !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, strings.ToLower(e))
		}
		return func(ctx context.Context) bool {
			r, ok := ctx.(Request)
			if !ok {
				return false
			}
			return slices.Contains(exts, strings.ToLower(path.Ext(r.Pathname())))
		}

	case len(c.Method) > 0:
		methods := make([]string, 0, len(c.Method))
		for _, m := range c.Method {
			methods = append(methods, strings.ToUpper(m))
		}
		return func(ctx context.Context) bool {
			r, ok := ctx.(Request)
			if !ok {
				return false
			}
			return slices.Contains(methods, strings.ToUpper(r.Method()))
		}

	case c.Custom != nil:
		return c.Custom

	default:
		return nil
	}
}
