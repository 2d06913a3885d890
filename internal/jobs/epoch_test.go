package jobs

import (
	"sync"
	"testing"
)

// TestEpochGuardStrictlyIncreases verifies epochs are never reused.
func TestEpochGuardStrictlyIncreases(t *testing.T) {
	var g EpochGuard
	start := g.Current()

	first := g.BeginNewRun()
	second := g.BeginNewRun()
	if first <= start || second <= first {
		t.Fatalf("epochs = %d, %d, %d; want strictly increasing", start, first, second)
	}
	if g.IsCurrent(first) {
		t.Fatal("superseded epoch reported as current")
	}
	if !g.IsCurrent(second) {
		t.Fatal("latest epoch not reported as current")
	}
}

// TestEpochGuardConcurrentRuns checks every concurrent run gets a unique epoch.
func TestEpochGuardConcurrentRuns(t *testing.T) {
	var g EpochGuard
	const runs = 64

	seen := make(chan uint64, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.BeginNewRun()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[uint64]struct{}, runs)
	for epoch := range seen {
		unique[epoch] = struct{}{}
	}
	if len(unique) != runs {
		t.Fatalf("unique epochs = %d, want %d", len(unique), runs)
	}
	if g.Current() != runs {
		t.Fatalf("current = %d, want %d", g.Current(), runs)
	}
}
