package cache

import (
	"sync/atomic"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Error("a should survive as most recently used")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUIdleExpiry(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clk.advance(40 * time.Second)
	c.Get("a") // refreshes a only
	clk.advance(40 * time.Second)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have expired")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was touched and should still be live")
	}
}

func TestLRUZeroTTLNeverExpires(t *testing.T) {
	c, clk := newTestCache(10, 0)
	c.Set("a", 1)
	clk.advance(1000 * time.Hour)

	if _, ok := c.Get("a"); !ok {
		t.Error("entry expired with ttl disabled")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, want 0", n)
	}
}

func TestCleanExpiredAndDeleteFunc(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	clk.advance(2 * time.Minute)
	c.Set("c", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired() = %d, want 2", n)
	}
	c.Set("d", 3)
	if n := c.DeleteFunc(func(v int) bool { return v == 3 }); n != 2 {
		t.Fatalf("DeleteFunc() = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

type countingCleaner struct{ calls int32 }

func (c *countingCleaner) CleanExpired() int {
	atomic.AddInt32(&c.calls, 1)
	return 1
}

func TestManagerSweepsUntilStopped(t *testing.T) {
	var reported int32
	m := NewManager(func(n int) { atomic.AddInt32(&reported, int32(n)) })
	cl := &countingCleaner{}
	m.Register(cl)

	if got := m.Sweep(); got != 1 {
		t.Fatalf("Sweep() = %d, want 1", got)
	}

	m.StartCleanup(5 * time.Millisecond)
	m.StartCleanup(5 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&reported) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	m.Stop()

	if atomic.LoadInt32(&reported) == 0 {
		t.Fatal("background sweep never ran")
	}
	after := atomic.LoadInt32(&cl.calls)
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&cl.calls) != after {
		t.Error("cleanup kept running after Stop")
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	NewManager(nil).Stop()
}
