package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter records whether and how the chain answered. The app uses
// it to decide whether a result still has to be rendered or the not-found
// handler has to run.
type ResponseWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	hooks   []func()
	status  int
	size    int64
	written bool
}

// NewResponseWriter wraps w. The status defaults to 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run, in registration order, right before the
// header is sent. Hooks may still change headers.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	w.hooks = append(w.hooks, fn)
	w.mu.Unlock()
}

// commit sends the header on the first call and reports whether it did.
// A zero code keeps the recorded status.
func (w *ResponseWriter) commit(code int) bool {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return false
	}
	w.written = true
	if code != 0 {
		w.status = code
	}
	hooks, status := w.hooks, w.status
	w.hooks = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(status)
	return true
}

// WriteHeader sends the header. Later calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.commit(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.commit(0)
	n, err := w.ResponseWriter.Write(b)

	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the response status; 200 until something else is sent.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush commits the header and flushes buffered data to the client.
func (w *ResponseWriter) Flush() {
	f, ok := w.ResponseWriter.(http.Flusher)
	if !ok {
		return
	}
	w.commit(0)
	f.Flush()
}

// Hijack hands the connection over to the caller. The response counts as
// written afterwards.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	w.mu.Lock()
	w.written = true
	w.hooks = nil
	w.mu.Unlock()
	return h.Hijack()
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
