package signal

import (
	"testing"
	"time"
)

func TestChatRateLimiterEnforcesLimit(t *testing.T) {
	rl := NewChatRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	if rl.Allow("a") {
		t.Fatalf("fourth attempt inside the window must be rejected")
	}

	// Other connections keep their own window.
	if !rl.Allow("b") {
		t.Fatalf("limit must be tracked per connection")
	}
}

func TestChatRateLimiterWindowSlides(t *testing.T) {
	rl := NewChatRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("first two attempts should pass")
	}
	if rl.Allow("a") {
		t.Fatalf("third attempt inside the window must be rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatalf("attempt after the window slides must pass")
	}
}

func TestChatRateLimiterDisabled(t *testing.T) {
	rl := NewChatRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("a") {
			t.Fatalf("disabled limiter must always allow")
		}
	}
}

func TestChatRateLimiterForget(t *testing.T) {
	rl := NewChatRateLimiter(1, time.Minute)
	if !rl.Allow("a") {
		t.Fatalf("first attempt should pass")
	}
	if rl.Allow("a") {
		t.Fatalf("second attempt must be rejected")
	}

	rl.Forget("a")
	if !rl.Allow("a") {
		t.Fatalf("window must reset after Forget")
	}
}
