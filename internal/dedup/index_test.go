package dedup

import (
	"fmt"
	"sync"
	"testing"
)

// TestIndexCheckAndInsert tests the basic insert-or-check semantics.
func TestIndexCheckAndInsert(t *testing.T) {
	t.Parallel()

	t.Run("first insert is new", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex()
		if !idx.CheckAndInsert("abc") {
			t.Error("first CheckAndInsert should report wasNew")
		}
	})

	t.Run("second insert is not new", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex()
		idx.CheckAndInsert("abc")
		if idx.CheckAndInsert("abc") {
			t.Error("second CheckAndInsert should not report wasNew")
		}
	})

	t.Run("distinct hashes are independent", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex()
		idx.CheckAndInsert("abc")
		if !idx.CheckAndInsert("def") {
			t.Error("different hash should be new")
		}
		if idx.Len() != 2 {
			t.Errorf("Len = %d, expected 2", idx.Len())
		}
	})

	t.Run("path recorded and retrieved", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex()
		idx.CheckAndInsert("abc")
		idx.RecordPath("abc", "/out/a.jpg")

		if got := idx.Path("abc"); got != "/out/a.jpg" {
			t.Errorf("Path = %q, expected %q", got, "/out/a.jpg")
		}
		if got := idx.Path("unknown"); got != "" {
			t.Errorf("Path for unknown hash = %q, expected empty", got)
		}
	})
}

// TestIndexConcurrency verifies that exactly one of many concurrent
// callers for the same hash observes wasNew.
func TestIndexConcurrency(t *testing.T) {
	t.Parallel()

	const (
		workers = 50
		hashes  = 10
	)

	idx := NewIndex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners = make(map[string]int)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for h := 0; h < hashes; h++ {
				hash := fmt.Sprintf("hash-%d", h)
				if idx.CheckAndInsert(hash) {
					mu.Lock()
					winners[hash]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if len(winners) != hashes {
		t.Fatalf("expected %d hashes to have winners, got %d", hashes, len(winners))
	}
	for hash, n := range winners {
		if n != 1 {
			t.Errorf("hash %q had %d winners, expected exactly 1", hash, n)
		}
	}
	if idx.Len() != hashes {
		t.Errorf("Len = %d, expected %d", idx.Len(), hashes)
	}
}
