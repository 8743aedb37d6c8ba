package middlewares

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// Media types understood by BodyParser.
const (
	MIMEApplicationJSON = "application/json"
	MIMEApplicationForm = "application/x-www-form-urlencoded"
	MIMEMultipartForm   = "multipart/form-data"
)

// DefaultBodyLimit caps request bodies read by BodyParser and Validate.
const DefaultBodyLimit int64 = 4 << 20 // 4MB

// BodyParserConfig configures the body parsing middleware.
type BodyParserConfig struct {
	Limit           int64 // Maximum body size in bytes
	MultipartMemory int64 // Bytes of multipart data kept in memory
}

// BodyParserOption configures BodyParserConfig.
type BodyParserOption func(*BodyParserConfig)

// WithBodyLimit sets the maximum body size in bytes.
func WithBodyLimit(n int64) BodyParserOption {
	return func(cfg *BodyParserConfig) {
		if n > 0 {
			cfg.Limit = n
		}
	}
}

// WithMultipartMemory sets how much multipart data is held in memory
// before parts spill to temporary files.
func WithMultipartMemory(n int64) BodyParserOption {
	return func(cfg *BodyParserConfig) {
		if n > 0 {
			cfg.MultipartMemory = n
		}
	}
}

// BodyParser returns a slot that parses the request body and stores it with
// SetBody: JSON as the decoded value (map[string]any for objects),
// urlencoded forms as url.Values and multipart forms as *multipart.Form.
// Other media types and empty bodies pass through untouched.
//
// Malformed bodies end the request with 400 and oversized ones with 413.
func BodyParser(opts ...BodyParserOption) *slot.Slot {
	cfg := &BodyParserConfig{
		Limit:           DefaultBodyLimit,
		MultipartMemory: 32 << 20,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		r := c.Request()
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
			return next()
		}

		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return next()
		}

		switch mt {
		case MIMEApplicationJSON:
			var v any
			if err := decodeJSON(c, cfg.Limit, &v); err != nil {
				return nil, err
			}
			c.SetBody(v)
		case MIMEApplicationForm:
			r.Body = http.MaxBytesReader(c.Response(), r.Body, cfg.Limit)
			if err := r.ParseForm(); err != nil {
				return nil, bodyError(err)
			}
			c.SetBody(r.PostForm)
		case MIMEMultipartForm:
			r.Body = http.MaxBytesReader(c.Response(), r.Body, cfg.Limit)
			if err := r.ParseMultipartForm(cfg.MultipartMemory); err != nil {
				return nil, bodyError(err)
			}
			c.SetBody(r.MultipartForm)
		}

		return next()
	})
}

// decodeJSON reads at most limit bytes of JSON from the request body into v.
func decodeJSON(c internal.Context, limit int64, v any) error {
	r := c.Request()
	body := http.MaxBytesReader(c.Response(), r.Body, limit)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return bodyError(err)
	}
	return nil
}

// bodyError maps a body read failure to an HTTP error.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return internal.NewHTTPError(http.StatusRequestEntityTooLarge, "", internal.WithError(err))
	}
	if errors.Is(err, io.EOF) {
		return internal.ErrBadRequest("empty request body", internal.WithError(err))
	}
	return internal.ErrBadRequest("malformed request body", internal.WithError(err))
}
