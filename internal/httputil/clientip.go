package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the client IP address from the request. When trustProxy
// is true the X-Forwarded-For (leftmost entry) and X-Real-IP headers are
// consulted before RemoteAddr. Only enable trustProxy behind a trusted
// reverse proxy; the headers are trivially spoofable otherwise.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func forwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The leftmost entry is the original client.
		if i := strings.IndexByte(xff, ','); i > 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
