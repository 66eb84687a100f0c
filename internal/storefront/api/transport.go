package api

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderRequestID      = "X-Request-Id"
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// requestIDTransport stamps every outbound request with an X-Request-Id
// header so calls can be correlated with server-side logs.
type requestIDTransport struct {
	base http.RoundTripper
}

func newRequestIDTransport(base http.RoundTripper) *requestIDTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &requestIDTransport{base: base}
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	return t.base.RoundTrip(req)
}
