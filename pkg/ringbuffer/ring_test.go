package ringbuffer

import "testing"

// ─── construction ──────────────────────────────────────────────────────────

func TestNewRejectsZeroCapacity(t *testing.T) {
	if _, err := New[int](0); err == nil {
		t.Fatal("New(0) should fail")
	}
	if _, err := New[int](-1); err == nil {
		t.Fatal("New(-1) should fail")
	}
}

// ─── push / pop FIFO order ─────────────────────────────────────────────────

func TestPushPopFIFOOrder(t *testing.T) {
	r, err := New[int](3)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int{1, 2, 3} {
		if res := r.Push(v); res != PushOK {
			t.Fatalf("Push(%d) = %v, want PushOK", v, res)
		}
	}
	if r.Push(4) != PushFull {
		t.Fatal("Push on full ring should return PushFull")
	}
	for _, want := range []int{1, 2, 3} {
		got, ok := r.PopFront()
		if !ok || got != want {
			t.Fatalf("PopFront() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if !r.IsEmpty() {
		t.Fatal("ring should be empty after draining all pushed elements")
	}
}

func TestPushAfterWraparound(t *testing.T) {
	r, _ := New[int](2)
	r.Push(1)
	r.Push(2)
	r.PopFront()
	r.Push(3)
	var got []int
	r.Each(func(v int) bool { got = append(got, v); return true })
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("Each() after wraparound = %v, want [2 3]", got)
	}
}

// ─── len / capacity / clear ────────────────────────────────────────────────

func TestLenCapacityClear(t *testing.T) {
	r, _ := New[int](4)
	if r.Capacity() != 4 {
		t.Fatalf("Capacity() = %d, want 4", r.Capacity())
	}
	r.Push(1)
	r.Push(2)
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	r.Clear()
	if r.Len() != 0 || !r.IsEmpty() {
		t.Fatal("Clear() should empty the ring")
	}
}

// ─── DrainWhile ─────────────────────────────────────────────────────────────

func TestDrainWhileStopsAtFirstReject(t *testing.T) {
	r, _ := New[int](5)
	for _, v := range []int{10, 20, 30, 40} {
		r.Push(v)
	}
	drained := r.DrainWhile(func(v int) bool { return v <= 20 })
	if len(drained) != 2 || drained[0] != 10 || drained[1] != 20 {
		t.Fatalf("DrainWhile() = %v, want [10 20]", drained)
	}
	remaining, _ := r.PeekFront()
	if remaining != 30 {
		t.Fatalf("front after drain = %d, want 30", remaining)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() after drain = %d, want 2", r.Len())
	}
}

func TestDrainWhileEmptyRing(t *testing.T) {
	r, _ := New[int](3)
	drained := r.DrainWhile(func(v int) bool { return true })
	if drained != nil {
		t.Fatalf("DrainWhile() on empty ring = %v, want nil", drained)
	}
}

// ─── FindLastMatching ───────────────────────────────────────────────────────

func TestFindLastMatchingPicksNewestQualifying(t *testing.T) {
	r, _ := New[int](5)
	for _, v := range []int{5, 10, 15, 20} {
		r.Push(v)
	}
	got, ok := r.FindLastMatching(func(v int) bool { return v <= 17 })
	if !ok || got != 15 {
		t.Fatalf("FindLastMatching() = (%d, %v), want (15, true)", got, ok)
	}
	if _, ok := r.FindLastMatching(func(v int) bool { return v < 0 }); ok {
		t.Fatal("FindLastMatching() should report not-found when nothing matches")
	}
}

func TestFindLastMatchingDoesNotMutate(t *testing.T) {
	r, _ := New[int](3)
	r.Push(1)
	r.Push(2)
	r.FindLastMatching(func(v int) bool { return true })
	if r.Len() != 2 {
		t.Fatalf("Len() after FindLastMatching = %d, want 2 (read-only)", r.Len())
	}
}
