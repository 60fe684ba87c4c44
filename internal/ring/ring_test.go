package ring

import "testing"

func TestAppendEvictionAndOrdering(t *testing.T) {
	r := New[string](3)
	ids := make([]uint64, 0, 5)
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, r.Append(v))
	}
	for i, id := range ids {
		if id != uint64(i+1) {
			t.Fatalf("append %d: got id %d, want %d", i, id, i+1)
		}
	}
	if got := r.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}
	if got := r.LastID(); got != 5 {
		t.Fatalf("LastID() = %d, want 5", got)
	}
	snap := r.Snapshot()
	want := []string{"c", "d", "e"}
	if len(snap) != len(want) {
		t.Fatalf("Snapshot len = %d, want %d", len(snap), len(want))
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("Snapshot[%d] = %q, want %q", i, snap[i], want[i])
		}
	}
}

func TestPageNewestFirst(t *testing.T) {
	r := New[string](3)
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		r.Append(v)
	}
	items, total := r.Page(0, 10, nil)
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []string{"e", "d", "c"}
	if len(items) != len(want) {
		t.Fatalf("items len = %d, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("items[%d] = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestPageOffsetAndLimit(t *testing.T) {
	r := New[int](10)
	for i := 0; i < 10; i++ {
		r.Append(i)
	}
	items, total := r.Page(2, 3, nil)
	if total != 10 {
		t.Fatalf("total = %d, want 10", total)
	}
	want := []int{7, 6, 5}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("items[%d] = %d, want %d", i, items[i], want[i])
		}
	}
}

func TestPageFilter(t *testing.T) {
	r := New[int](10)
	for i := 0; i < 10; i++ {
		r.Append(i)
	}
	items, total := r.Page(0, 100, func(v int) bool { return v%2 == 0 })
	if total != 10 {
		t.Fatalf("total = %d, want 10 (total is live count, not post-filter count)", total)
	}
	for _, v := range items {
		if v%2 != 0 {
			t.Fatalf("filter leaked odd value %d", v)
		}
	}
}

func TestClear(t *testing.T) {
	r := New[int](3)
	r.Append(1)
	r.Append(2)
	r.Clear()
	if r.Count() != 0 || r.LastID() != 0 {
		t.Fatalf("Clear did not reset state: count=%d lastID=%d", r.Count(), r.LastID())
	}
	id := r.Append(9)
	if id != 1 {
		t.Fatalf("id after Clear = %d, want 1", id)
	}
}

func TestGetToleratesEvictedIDs(t *testing.T) {
	r := New[int](2)
	r.Append(1)
	r.Append(2)
	r.Append(3)
	if _, ok := r.Get(1); ok {
		t.Fatalf("Get(1) should report evicted")
	}
	if v, ok := r.Get(3); !ok || v != 3 {
		t.Fatalf("Get(3) = %d, %v, want 3, true", v, ok)
	}
}
