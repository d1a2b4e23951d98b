package utils

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow("client") {
		t.Error("request over the limit should be denied")
	}
}

func TestRateLimiterIsPerKey(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.Allow("a") {
		t.Fatal("first request for key a should be allowed")
	}
	if !rl.Allow("b") {
		t.Error("first request for key b should be allowed")
	}
	if rl.Allow("a") {
		t.Error("second request for key a should be denied")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("client")
	if rl.Allow("client") {
		t.Fatal("second request should be denied")
	}

	rl.Reset("client")
	if !rl.Allow("client") {
		t.Error("request after reset should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	rl.Allow("client")
	time.Sleep(20 * time.Millisecond)

	if !rl.Allow("client") {
		t.Error("request after the window passed should be allowed")
	}
}

func TestRateLimiterGetRemaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	if remaining := rl.GetRemaining("client"); remaining != 5 {
		t.Errorf("expected 5 remaining, got %d", remaining)
	}

	rl.Allow("client")
	rl.Allow("client")

	if remaining := rl.GetRemaining("client"); remaining != 3 {
		t.Errorf("expected 3 remaining, got %d", remaining)
	}
}
