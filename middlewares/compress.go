package middlewares

import (
	"io"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// Content encodings supported by Compress.
const (
	EncodingBrotli = "br"
	EncodingGzip   = "gzip"
)

// DefaultCompressMinSize is the smallest body that gets compressed.
const DefaultCompressMinSize = 1024

// DefaultCompressTypes are the media types compressed by default.
var DefaultCompressTypes = []string{
	"text/html",
	"text/css",
	"text/plain",
	"text/javascript",
	"text/xml",
	"application/javascript",
	"application/json",
	"application/xml",
	"application/problem+json",
	"image/svg+xml",
}

// CompressConfig configures the compression middleware.
type CompressConfig struct {
	Encodings    []string // Supported encodings in server preference order
	ContentTypes []string // Media types worth compressing
	MinSize      int      // Bodies below this size are sent as is
	GzipLevel    int
	BrotliLevel  int
}

// CompressOption configures CompressConfig.
type CompressOption func(*CompressConfig)

// WithCompressMinSize sets the minimum body size to compress.
func WithCompressMinSize(n int) CompressOption {
	return func(cfg *CompressConfig) {
		if n >= 0 {
			cfg.MinSize = n
		}
	}
}

// WithCompressTypes replaces the list of compressible media types.
func WithCompressTypes(types ...string) CompressOption {
	return func(cfg *CompressConfig) {
		cfg.ContentTypes = types
	}
}

// WithCompressEncodings sets the encodings offered, most preferred first.
// Unknown encodings are ignored.
func WithCompressEncodings(encodings ...string) CompressOption {
	return func(cfg *CompressConfig) {
		cfg.Encodings = slices.DeleteFunc(slices.Clone(encodings), func(e string) bool {
			return e != EncodingBrotli && e != EncodingGzip
		})
	}
}

// WithGzipLevel sets the gzip compression level.
func WithGzipLevel(level int) CompressOption {
	return func(cfg *CompressConfig) {
		cfg.GzipLevel = level
	}
}

// WithBrotliLevel sets the brotli compression level (0-11).
func WithBrotliLevel(level int) CompressOption {
	return func(cfg *CompressConfig) {
		cfg.BrotliLevel = level
	}
}

// Compress returns a slot that compresses responses written downstream with
// brotli or gzip, whichever the client accepts and the server prefers.
// Bodies smaller than MinSize, already encoded responses and media types not
// in ContentTypes are passed through.
//
// Results rendered by the app after the chain returns are not compressed;
// write the response inside the chain for that.
func Compress(opts ...CompressOption) *slot.Slot {
	cfg := &CompressConfig{
		Encodings:    []string{EncodingBrotli, EncodingGzip},
		ContentTypes: DefaultCompressTypes,
		MinSize:      DefaultCompressMinSize,
		GzipLevel:    gzip.DefaultCompression,
		BrotliLevel:  brotli.DefaultCompression,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		encoding := negotiateEncoding(c.Header("Accept-Encoding"), cfg.Encodings)
		if encoding == "" || c.Method() == http.MethodHead || c.Header("Upgrade") != "" {
			return next()
		}

		w := c.Response()
		w.Header().Add("Vary", "Accept-Encoding")

		cw := &compressWriter{ResponseWriter: w, cfg: cfg, encoding: encoding}
		c.SetResponse(cw)
		defer c.SetResponse(w)

		res, err := next()
		if cerr := cw.Close(); err == nil {
			err = cerr
		}
		return res, err
	})
}

// negotiateEncoding picks the first supported encoding the client accepts.
func negotiateEncoding(header string, supported []string) string {
	if header == "" {
		return ""
	}

	accepted := make(map[string]bool)
	wildcard := false
	for part := range strings.SplitSeq(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		ok := true
		if q, found := strings.CutPrefix(strings.TrimSpace(params), "q="); found {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				ok = false
			}
		}
		if name == "*" {
			wildcard = ok
			continue
		}
		accepted[name] = ok
	}

	for _, enc := range supported {
		if ok, listed := accepted[enc]; (listed && ok) || (!listed && wildcard) {
			return enc
		}
	}
	return ""
}

// compressWriter buffers the start of a body until it can decide whether
// compression pays off.
type compressWriter struct {
	http.ResponseWriter
	cfg         *CompressConfig
	encoding    string
	encoder     io.WriteCloser
	buf         []byte
	status      int
	wroteHeader bool
	decided     bool
}

func (w *compressWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code

	// Informational and bodiless responses go out right away.
	if code < http.StatusOK || code == http.StatusNoContent || code == http.StatusNotModified {
		w.decide(false)
	}
}

func (w *compressWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.decided {
		if w.encoder != nil {
			return w.encoder.Write(b)
		}
		return w.ResponseWriter.Write(b)
	}

	w.buf = append(w.buf, b...)
	if len(w.buf) >= w.cfg.MinSize {
		if err := w.flushBuffer(w.compressible()); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

// Flush sends what is buffered, compressing it when allowed.
func (w *compressWriter) Flush() {
	if !w.wroteHeader {
		return
	}
	if !w.decided {
		_ = w.flushBuffer(w.compressible())
	}
	if f, ok := w.encoder.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Close finishes the response. A body that never reached MinSize is sent
// uncompressed.
func (w *compressWriter) Close() error {
	if !w.wroteHeader {
		return nil
	}
	if !w.decided {
		if err := w.flushBuffer(false); err != nil {
			return err
		}
	}
	if w.encoder != nil {
		return w.encoder.Close()
	}
	return nil
}

// Unwrap returns the wrapped writer.
func (w *compressWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *compressWriter) flushBuffer(compress bool) error {
	w.decide(compress)
	if len(w.buf) == 0 {
		return nil
	}
	buf := w.buf
	w.buf = nil
	if w.encoder != nil {
		_, err := w.encoder.Write(buf)
		return err
	}
	_, err := w.ResponseWriter.Write(buf)
	return err
}

// decide commits the headers, with or without an encoder.
func (w *compressWriter) decide(compress bool) {
	if w.decided {
		return
	}
	w.decided = true

	if compress {
		h := w.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", w.encoding)
		switch w.encoding {
		case EncodingBrotli:
			w.encoder = brotli.NewWriterLevel(w.ResponseWriter, w.cfg.BrotliLevel)
		case EncodingGzip:
			gz, err := gzip.NewWriterLevel(w.ResponseWriter, w.cfg.GzipLevel)
			if err != nil {
				gz = gzip.NewWriter(w.ResponseWriter)
			}
			w.encoder = gz
		}
	}
	w.ResponseWriter.WriteHeader(w.status)
}

// compressible reports whether the buffered response qualifies.
func (w *compressWriter) compressible() bool {
	h := w.Header()
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := h.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(w.buf)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return slices.Contains(w.cfg.ContentTypes, mt)
}
