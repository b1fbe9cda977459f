package httputil

import (
	"net/http"
	"time"

	"github.com/ncassessoria/gerapost/pkg/buildinfo"
)

// DefaultTimeout bounds a single request when the caller gives none.
const DefaultTimeout = 15 * time.Second

// NewClient returns an HTTP client with a timeout and a User-Agent that
// identifies the tool.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgent{next: http.DefaultTransport},
	}
}

type userAgent struct{ next http.RoundTripper }

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", "gerapost/"+buildinfo.Version)
	return u.next.RoundTrip(r)
}
