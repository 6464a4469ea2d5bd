package app

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

// fakeConn is a SignalConnection that records frames in memory. markDead
// flips it into a state where any further delivery is counted as a
// violation, for tests that assert nothing arrives after a cutoff.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
	dead   bool
	late   int
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return core.ErrBackpressure
	}
	if c.dead {
		c.late++
		return nil
	}
	buf := make(core.Frame, len(f))
	copy(buf, f)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) markDead() {
	c.mu.Lock()
	c.dead = true
	c.mu.Unlock()
}

func (c *fakeConn) lateCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.late
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) sent() []core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Frame(nil), c.frames...)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("a", "alice", &fakeConn{}, nil); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := r.Register("a", "imposter", &fakeConn{}, nil); !errors.Is(err, core.ErrDuplicateConnection) {
		t.Fatalf("expected DuplicateConnection, got %v", err)
	}
	if r.Count() != 1 {
		t.Fatalf("expected one record, got %d", r.Count())
	}
}

func TestRegisterAcceptsOversizedName(t *testing.T) {
	r := NewRegistry()

	conn, err := r.Register("a", strings.Repeat("x", 40), &fakeConn{}, nil)
	if err != nil {
		t.Fatalf("oversized name must not fail registration: %v", err)
	}
	if got := len([]rune(conn.Name)); got != domain.MaxDisplayNameLen {
		t.Fatalf("name should be cut to %d, got %d", domain.MaxDisplayNameLen, got)
	}

	// Renames are validated, not truncated.
	long := strings.Repeat("y", 40)
	if err := r.UpdateMeta("a", MetaPatch{Name: &long}); !errors.Is(err, domain.ErrDisplayNameTooLong) {
		t.Fatalf("expected rename rejection, got %v", err)
	}
	got, _ := r.Lookup("a")
	if got.Name != strings.Repeat("x", domain.MaxDisplayNameLen) {
		t.Fatalf("rejected rename must leave the name untouched, got %q", got.Name)
	}
}

func TestRegisterDefaultsDisplayName(t *testing.T) {
	r := NewRegistry()
	conn, err := r.Register("a", "", &fakeConn{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if conn.Name != domain.DefaultDisplayName {
		t.Fatalf("expected placeholder name, got %q", conn.Name)
	}
}

func TestUpdateMetaMergesPartial(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("a", "alice", &fakeConn{}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	off := false
	if err := r.UpdateMeta("a", MetaPatch{MicOn: &off}); err != nil {
		t.Fatalf("update mic: %v", err)
	}
	got, ok := r.Lookup("a")
	if !ok {
		t.Fatalf("lookup failed")
	}
	if got.Media.MicOn {
		t.Fatalf("mic flag should be off")
	}
	if !got.Media.CamOn {
		t.Fatalf("cam flag must be untouched")
	}
	if got.Name != "alice" {
		t.Fatalf("name must be untouched, got %q", got.Name)
	}

	name := "bob"
	if err := r.UpdateMeta("a", MetaPatch{Name: &name}); err != nil {
		t.Fatalf("update name: %v", err)
	}
	got, _ = r.Lookup("a")
	if got.Name != "bob" {
		t.Fatalf("expected renamed connection, got %q", got.Name)
	}

	if err := r.UpdateMeta("ghost", MetaPatch{Name: &name}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown id, got %v", err)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("a", "alice", &fakeConn{}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, _ := r.Lookup("a")
	got.Name = "mutated"

	again, _ := r.Lookup("a")
	if again.Name != "alice" {
		t.Fatalf("registry state leaked through lookup copy")
	}
}

func TestRemoveForgetsConnection(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("a", "alice", &fakeConn{}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.Remove("a")

	if _, ok := r.Lookup("a"); ok {
		t.Fatalf("removed connection still visible")
	}
	if _, ok := r.Signal("a"); ok {
		t.Fatalf("removed connection still has a transport binding")
	}
	r.Remove("a") // idempotent
}
