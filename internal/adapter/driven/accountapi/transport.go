package accountapi

import (
	"net/http"

	"github.com/ericfisherdev/profilepanel/internal/requestid"
)

// requestIDTransport stamps every outgoing request with the correlation ID
// of the inbound request that caused it, minting one when there is none.
type requestIDTransport struct {
	next http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := requestid.FromContext(req.Context())
	if id == "" {
		id = requestid.New()
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set(requestid.Header, id)
	return t.next.RoundTrip(clone)
}
