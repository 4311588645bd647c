package httpx

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
)

// Recorder captures a response so that a handler can be called internally
// and its outcome inspected before anything reaches the client.
type Recorder struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewRecorder() *Recorder {
	return &Recorder{header: http.Header{}}
}

// Status is 200 when the handler wrote without setting one.
func (rec *Recorder) Status() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

func (rec *Recorder) Header() http.Header {
	return rec.header
}

func (rec *Recorder) Body() []byte {
	return rec.body.Bytes()
}

func (rec *Recorder) Write(body []byte) (int, error) {
	return rec.body.Write(body)
}

func (rec *Recorder) WriteHeader(statusCode int) {
	if rec.status == 0 {
		rec.status = statusCode
	}
}

// DecodeJSON parses the captured body.
func (rec *Recorder) DecodeJSON(v any) error {
	return json.Unmarshal(rec.body.Bytes(), v)
}

// Flush replays the captured response on w.
func (rec *Recorder) Flush(w http.ResponseWriter) error {
	header := w.Header()
	for key, value := range rec.header {
		header[key] = value
	}
	w.WriteHeader(rec.Status())
	_, err := w.Write(rec.body.Bytes())
	return err
}

// ClientIP is the address of the caller, without port. It relies on
// middleware.RealIP having rewritten RemoteAddr behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
