package goid

import (
	"sync"
	"testing"
)

func TestID_StableWithinGoroutine(t *testing.T) {
	first := ID()
	if first <= 0 {
		t.Fatalf("ID() = %d, want > 0", first)
	}
	for i := 0; i < 100; i++ {
		if got := ID(); got != first {
			t.Fatalf("ID() changed within goroutine: got %d, want %d", got, first)
		}
	}
}

func TestID_DistinctAcrossGoroutines(t *testing.T) {
	const n = 50

	var mu sync.Mutex
	seen := make(map[int64]int)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ID()
			mu.Lock()
			seen[id]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("expected %d distinct goroutine ids, got %d", n, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("goroutine id %d observed %d times", id, count)
		}
	}
}
