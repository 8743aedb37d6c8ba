package middlewares

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// ETagConfig configures the ETag middleware.
type ETagConfig struct {
	Weak bool // Emit W/ prefixed validators
}

// ETagOption configures ETagConfig.
type ETagOption func(*ETagConfig)

// WithWeakETag makes the middleware emit weak validators.
func WithWeakETag() ETagOption {
	return func(cfg *ETagConfig) {
		cfg.Weak = true
	}
}

// ETag returns a slot that buffers successful GET and HEAD responses written
// downstream, tags them with a content hash and answers matching
// If-None-Match requests with 304 Not Modified.
// Responses that already carry an ETag are left untouched.
func ETag(opts ...ETagOption) *slot.Slot {
	cfg := &ETagConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		if c.Method() != http.MethodGet && c.Method() != http.MethodHead {
			return next()
		}

		w := c.Response()
		bw := &bufferWriter{ResponseWriter: w}
		c.SetResponse(bw)
		res, err := next()
		c.SetResponse(w)

		if !bw.wroteHeader {
			// Nothing was written; the app renders the result.
			return res, err
		}

		if bw.status < 200 || bw.status >= 300 || w.Header().Get("ETag") != "" {
			return res, firstErr(err, bw.commit())
		}

		tag := computeETag(bw.body.Bytes(), cfg.Weak)
		w.Header().Set("ETag", tag)

		if etagMatches(c.Header("If-None-Match"), tag) {
			h := w.Header()
			h.Del("Content-Type")
			h.Del("Content-Length")
			w.WriteHeader(http.StatusNotModified)
			return res, err
		}

		return res, firstErr(err, bw.commit())
	})
}

func computeETag(body []byte, weak bool) string {
	tag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	if weak {
		return "W/" + tag
	}
	return tag
}

// etagMatches applies the weak comparison used for If-None-Match.
func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	want := strings.TrimPrefix(tag, "W/")
	for candidate := range strings.SplitSeq(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// bufferWriter holds a whole response until commit.
type bufferWriter struct {
	http.ResponseWriter
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (w *bufferWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
}

func (w *bufferWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

// Unwrap returns the wrapped writer.
func (w *bufferWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *bufferWriter) commit() error {
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}
