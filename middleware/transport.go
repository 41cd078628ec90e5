package middleware

import (
	"context"
	"net/http"
)

// HeaderSource supplies the headers attached to outgoing backend requests.
// *goOwner.Facade satisfies it.
type HeaderSource interface {
	AuthHeader(ctx context.Context) http.Header
}

type authTransport struct {
	source HeaderSource
	base   http.RoundTripper
}

// Transport wraps base so every request carries source's auth header. Requests that
// already set Authorization are sent unchanged. A nil base means http.DefaultTransport.
func Transport(source HeaderSource, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{source: source, base: base}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.source == nil || req.Header.Get("Authorization") != "" {
		return t.base.RoundTrip(req)
	}
	h := t.source.AuthHeader(req.Context())
	if len(h) == 0 {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	for k, vs := range h {
		for _, v := range vs {
			out.Header.Add(k, v)
		}
	}
	return t.base.RoundTrip(out)
}
