// Package responsewriter records the status and size of a response for the
// access log, request metrics and trace spans.
package responsewriter

import (
	"net/http"
)

// ResponseWriter remembers the first status written and counts body bytes.
// It stays transparent to http.ResponseController, which the feed stream
// uses to flush and to lift the write deadline.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	started bool
}

// Wrap returns w with recording. The status is 200 until one is written.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader keeps only the first call, as net/http does.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.started {
		return
	}
	w.status = code
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.started {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StatusCode is the status sent, or 200 when nothing has been written.
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten is the body size so far. For a stream it grows with every event.
func (w *ResponseWriter) BytesWritten() int { return w.bytes }

// Unwrap lets http.ResponseController reach the connection.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Flush commits the headers and forwards to the underlying writer.
func (w *ResponseWriter) Flush() {
	if !w.started {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
