package api

import "testing"

func TestRequestLimiterPerIP(t *testing.T) {
	l := newRequestLimiter(2)

	if !l.acquire("10.0.0.1") || !l.acquire("10.0.0.1") {
		t.Fatal("first two acquires should succeed")
	}
	if l.acquire("10.0.0.1") {
		t.Error("third acquire for the same IP should fail")
	}
	if !l.acquire("10.0.0.2") {
		t.Error("a different IP is not affected by the first IP's limit")
	}

	l.release("10.0.0.1")
	if !l.acquire("10.0.0.1") {
		t.Error("release should free a slot")
	}
}

func TestRequestLimiterGlobalCap(t *testing.T) {
	l := newRequestLimiter(1)
	l.maxTotal = 3

	for i := 0; i < 3; i++ {
		if !l.acquire(string(rune('a' + i))) {
			t.Fatalf("acquire %d should succeed", i)
		}
	}
	if l.acquire("z") {
		t.Error("global cap should reject a fresh IP")
	}

	l.release("a")
	if !l.acquire("z") {
		t.Error("release should free the global slot")
	}
}

func TestRequestLimiterCleansUpIdleIPs(t *testing.T) {
	l := newRequestLimiter(5)
	l.acquire("10.0.0.1")
	l.release("10.0.0.1")

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.inflight) != 0 {
		t.Errorf("inflight map not cleaned up: %v", l.inflight)
	}
}
