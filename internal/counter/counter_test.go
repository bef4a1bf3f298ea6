package counter

import (
	"slices"
	"testing"
)

func TestAddAndGet(t *testing.T) {
	c := New()
	if got := c.Add(3); got != 1 {
		t.Fatalf("first Add = %d, want 1", got)
	}
	if got := c.Add(3); got != 2 {
		t.Fatalf("second Add = %d, want 2", got)
	}
	c.Add(1)
	if got := c.Get(3); got != 2 {
		t.Errorf("Get(3) = %d, want 2", got)
	}
	if got := c.Get(1); got != 1 {
		t.Errorf("Get(1) = %d, want 1", got)
	}
	if got := c.Get(42); got != 0 {
		t.Errorf("Get(absent) = %d, want 0", got)
	}
	if got := c.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestNegativeKeysAndCounts(t *testing.T) {
	c := New()
	if got := c.Add(-1); got != 0 {
		t.Errorf("Add(-1) = %d, want 0", got)
	}
	if c.Set(-1, 4) {
		t.Error("Set(-1, 4) should be rejected")
	}
	if c.Set(2, -4) {
		t.Error("Set(2, -4) should be rejected")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestSetIsAbsolute(t *testing.T) {
	c := New()
	c.Add(5)
	c.Add(5)
	if !c.Set(5, 7) {
		t.Fatal("Set rejected a valid assignment")
	}
	if got := c.Get(5); got != 7 {
		t.Errorf("Get(5) = %d, want 7", got)
	}
	c.Set(9, 1)
	if got := c.Get(9); got != 1 {
		t.Errorf("Set should insert absent key, Get(9) = %d", got)
	}
}

func TestZeroCountIsLogicallyAbsent(t *testing.T) {
	c := New()
	c.Set(1, 3)
	c.Set(2, 4)
	c.Set(1, 0)

	if got := c.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
	var keys []int
	for key := range c.All() {
		keys = append(keys, key)
	}
	if !slices.Equal(keys, []int{2}) {
		t.Errorf("All() keys = %v, want [2]", keys)
	}

	// Re-adding a zeroed key brings it back at 1.
	if got := c.Add(1); got != 1 {
		t.Errorf("Add after zero = %d, want 1", got)
	}
	if got := c.Size(); got != 2 {
		t.Errorf("Size() after re-add = %d, want 2", got)
	}
}

func TestAllAscendingOrder(t *testing.T) {
	c := New()
	for _, key := range []int{7, 2, 9, 1, 4} {
		c.Add(key)
	}
	var keys []int
	for key := range c.All() {
		keys = append(keys, key)
	}
	if !slices.Equal(keys, []int{1, 2, 4, 7, 9}) {
		t.Errorf("All() order = %v", keys)
	}
}

func TestAllStopsEarly(t *testing.T) {
	c := New()
	for i := 1; i <= 10; i++ {
		c.Add(i)
	}
	visited := 0
	for range c.All() {
		visited++
		if visited == 3 {
			break
		}
	}
	if visited != 3 {
		t.Errorf("visited %d, want 3", visited)
	}
}

func TestSetDuringIteration(t *testing.T) {
	c := New()
	c.Set(1, 5)
	c.Set(2, 6)
	c.Set(3, 7)
	for key := range c.All() {
		if key == 1 {
			c.Set(2, 0)
		}
	}
	if got := c.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestCloneCompactEqual(t *testing.T) {
	c := New()
	c.Set(1, 2)
	c.Set(3, 0)
	c.Set(4, 8)

	clone := c.Clone()
	if !Equal(c, clone) {
		t.Fatalf("clone %v differs from %v", clone, c)
	}
	clone.Add(1)
	if Equal(c, clone) {
		t.Fatal("clone must be independent")
	}

	c.Compact()
	if c.list.Len() != 2 {
		t.Errorf("Compact left %d entries, want 2", c.list.Len())
	}
	if got := c.String(); got != "{1:2,4:8}" {
		t.Errorf("String() = %q", got)
	}
}

func BenchmarkCounterAdd(b *testing.B) {
	c := New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(i % 1000)
	}
}
