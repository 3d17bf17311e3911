package api

import "sync"

// requestLimiter tracks in-flight API requests per client IP and globally.
type requestLimiter struct {
	mu       sync.Mutex
	inflight map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

func newRequestLimiter(maxPerIP int) *requestLimiter {
	return &requestLimiter{
		inflight: make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: 1000, // Default global cap.
	}
}

// acquire attempts to admit a request for the given IP.
// Returns false if the IP or global limit has been reached.
func (l *requestLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total >= l.maxTotal {
		return false
	}
	if l.inflight[ip] >= l.maxPerIP {
		return false
	}

	l.inflight[ip]++
	l.total++
	return true
}

// release decrements the in-flight count for the given IP.
func (l *requestLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inflight[ip]--
	l.total--
	if l.inflight[ip] <= 0 {
		delete(l.inflight, ip)
	}
}
