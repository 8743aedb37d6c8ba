package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// DefaultCORSConfig provides sensible defaults for CORS.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	MaxAge:       DefaultCORSMaxAge,
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists allowed origins. "*" allows any origin and a single
	// leading wildcard label, as in "https://*.example.com", allows its
	// subdomains.
	AllowOrigins []string

	// AllowOriginFunc, when set, replaces AllowOrigins.
	AllowOriginFunc func(origin string) bool

	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string

	// AllowCredentials echoes the request origin instead of "*".
	AllowCredentials bool

	// MaxAge is how long browsers may cache a preflight answer.
	MaxAge time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins sets the allowed origins.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOrigins = origins }
}

// WithAllowOriginFunc decides origins dynamically, overriding AllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOriginFunc = fn }
}

// WithAllowMethods sets the methods announced to preflight requests.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowMethods = methods }
}

// WithAllowHeaders sets the request headers announced to preflight requests.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowHeaders = headers }
}

// WithExposeHeaders sets the response headers readable by scripts.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.ExposeHeaders = headers }
}

// WithAllowCredentials allows cookies and authorization headers.
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowCredentials = true }
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) { cfg.MaxAge = d }
}

// CORS returns a slot that handles Cross-Origin Resource Sharing.
// Preflight requests from allowed origins are answered with 204 and end the
// chain; other requests get the CORS headers and continue.
//
// Example:
//
//	husca.WithMiddleware(middlewares.CORS(
//	    middlewares.WithAllowOrigins("https://app.example.com"),
//	    middlewares.WithAllowCredentials(),
//	))
func CORS(opts ...CORSOption) *slot.Slot {
	cfg := &CORSConfig{
		AllowOrigins: DefaultCORSConfig.AllowOrigins,
		AllowMethods: DefaultCORSConfig.AllowMethods,
		AllowHeaders: DefaultCORSConfig.AllowHeaders,
		MaxAge:       DefaultCORSConfig.MaxAge,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))
	hasWildcard := slices.Contains(cfg.AllowOrigins, "*")
	allowed := cfg.AllowOriginFunc
	if allowed == nil {
		allowed = originMatcher(cfg.AllowOrigins)
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		origin := c.Header("Origin")
		if origin == "" || !allowed(origin) {
			// Browsers block disallowed origins on their own.
			return next()
		}

		headers := c.Response().Header()
		headers.Add("Vary", "Origin")

		if cfg.AllowCredentials || !hasWildcard || cfg.AllowOriginFunc != nil {
			headers.Set("Access-Control-Allow-Origin", origin)
		} else {
			headers.Set("Access-Control-Allow-Origin", "*")
		}
		if cfg.AllowCredentials {
			headers.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposeHeaders != "" {
			headers.Set("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Method() != http.MethodOptions || c.Header("Access-Control-Request-Method") == "" {
			return next()
		}

		headers.Add("Vary", "Access-Control-Request-Method")
		headers.Add("Vary", "Access-Control-Request-Headers")
		headers.Set("Access-Control-Allow-Methods", allowMethods)
		headers.Set("Access-Control-Allow-Headers", allowHeaders)
		if cfg.MaxAge > 0 {
			headers.Set("Access-Control-Max-Age", maxAge)
		}
		return nil, c.NoContent(http.StatusNoContent)
	})
}

// originMatcher compiles the allowed origins into a predicate.
func originMatcher(origins []string) func(string) bool {
	exact := make(map[string]struct{}, len(origins))
	var suffixes [][2]string // scheme prefix, domain suffix
	for _, o := range origins {
		if o == "*" {
			return func(string) bool { return true }
		}
		o = strings.ToLower(o)
		if scheme, rest, ok := strings.Cut(o, "://*."); ok {
			suffixes = append(suffixes, [2]string{scheme + "://", "." + rest})
			continue
		}
		exact[o] = struct{}{}
	}

	return func(origin string) bool {
		origin = strings.ToLower(origin)
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, s := range suffixes {
			host, ok := strings.CutPrefix(origin, s[0])
			if ok && len(host) > len(s[1]) && strings.HasSuffix(host, s[1]) {
				return true
			}
		}
		return false
	}
}
