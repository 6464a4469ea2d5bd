package app

import (
	"testing"
	"time"
)

func TestPoolPopsOldestExcludingSelf(t *testing.T) {
	p := &waitingPool{}
	base := time.Unix(1_700_000_000, 0)
	p.push("a", base)
	p.push("b", base.Add(time.Second))
	p.push("c", base.Add(2*time.Second))

	e, ok := p.popOldest("a")
	if !ok || e.ID != "b" {
		t.Fatalf("expected b (oldest other than a), got %v ok=%v", e.ID, ok)
	}

	e, ok = p.popOldest("x")
	if !ok || e.ID != "a" {
		t.Fatalf("expected a, got %v", e.ID)
	}

	if p.len() != 1 || !p.contains("c") {
		t.Fatalf("only c should remain")
	}

	if _, ok := p.popOldest("c"); ok {
		t.Fatalf("pool with only the excluded entry must report empty")
	}
}

func TestPoolRemove(t *testing.T) {
	p := &waitingPool{}
	p.push("a", time.Unix(0, 0))
	p.push("b", time.Unix(1, 0))

	if !p.remove("a") {
		t.Fatalf("remove existing entry failed")
	}
	if p.remove("a") {
		t.Fatalf("double remove must report false")
	}
	if p.len() != 1 || p.contains("a") {
		t.Fatalf("a should be gone")
	}
}
