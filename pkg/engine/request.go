package engine

import (
	"net"
	"net/http"
)

// UnknownUserAgent is reported when a request carries no User-Agent header.
const UnknownUserAgent = "Unknown"

// RequestView is the part of an inbound request that is logged and notified.
type RequestView struct {
	Path          string
	ClientAddress string
	UserAgent     string
}

// NewRequestView extracts the view from r. clientIPHeader names the header a
// fronting proxy uses for the original client address; when that header is
// absent the transport peer address is used.
func NewRequestView(r *http.Request, clientIPHeader string) RequestView {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = UnknownUserAgent
	}
	return RequestView{
		Path:          r.URL.Path,
		ClientAddress: clientAddress(r, clientIPHeader),
		UserAgent:     ua,
	}
}

func clientAddress(r *http.Request, header string) string {
	if header != "" {
		if v := r.Header.Get(header); v != "" {
			return v
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
