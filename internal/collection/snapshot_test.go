package collection

import (
	"sync"
	"testing"
	"time"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

func sampleRecords() []domain.VideoRecord {
	return []domain.VideoRecord{
		{ID: "v1", URL: "https://www.tiktok.com/@a/video/v1", Duration: "45", Status: domain.VideoStatusPending, SubtitlesStatus: domain.SubtitlesStatusIdle},
		{ID: "v2", URL: "https://www.tiktok.com/@a/video/v2", Duration: "1:20", Status: domain.VideoStatusPending, SubtitlesStatus: domain.SubtitlesStatusIdle},
		{ID: "v3", URL: "https://www.tiktok.com/@a/video/v3", Duration: "0:05", Status: domain.VideoStatusPending, SubtitlesStatus: domain.SubtitlesStatusIdle},
	}
}

// TestReplaceAllDeduplicatesByID keeps the first record for a repeated id.
func TestReplaceAllDeduplicatesByID(t *testing.T) {
	records := append(sampleRecords(), domain.VideoRecord{ID: "v1", Title: "duplicate"})
	snap := New(records)

	if snap.Len() != 3 {
		t.Fatalf("len = %d, want 3", snap.Len())
	}
	got, _ := snap.Lookup("v1")
	if got.Title == "duplicate" {
		t.Fatal("expected first occurrence of v1 to win")
	}
}

// TestUpdateByIDProducesNewSnapshot verifies older snapshots are untouched.
func TestUpdateByIDProducesNewSnapshot(t *testing.T) {
	before := New(sampleRecords())
	after := before.UpdateByID("v2", MarkCompleted("hello"))

	old, _ := before.Lookup("v2")
	if old.Status != domain.VideoStatusPending {
		t.Fatalf("old snapshot status = %s, want pending", old.Status)
	}
	updated, _ := after.Lookup("v2")
	if updated.Status != domain.VideoStatusCompleted || updated.Transcription != "hello" {
		t.Fatalf("updated = %+v, want completed with transcription", updated)
	}
}

// TestUpdateByIDMissingIsNoop checks absent ids are ignored.
func TestUpdateByIDMissingIsNoop(t *testing.T) {
	snap := New(sampleRecords())
	next := snap.UpdateByID("missing", MarkError)
	if next.Len() != snap.Len() {
		t.Fatalf("len = %d, want %d", next.Len(), snap.Len())
	}
	if len(next.WithStatus(domain.VideoStatusError)) != 0 {
		t.Fatal("expected no error records")
	}
}

// TestRemovedRecordIsNotResurrected applies a late patch after removal.
func TestRemovedRecordIsNotResurrected(t *testing.T) {
	snap := New(sampleRecords()).RemoveByID("v1")
	snap = snap.UpdateByID("v1", MarkCompleted("late"))

	if _, ok := snap.Lookup("v1"); ok {
		t.Fatal("removed record came back")
	}
	if snap.Len() != 2 {
		t.Fatalf("len = %d, want 2", snap.Len())
	}
}

// TestRecordsReturnsCopy guards the snapshot against caller edits.
func TestRecordsReturnsCopy(t *testing.T) {
	snap := New(sampleRecords())
	records := snap.Records()
	records[0].Status = domain.VideoStatusError

	got, _ := snap.Lookup("v1")
	if got.Status != domain.VideoStatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
}

// TestMergeBatchResults covers each result status and unknown ids.
func TestMergeBatchResults(t *testing.T) {
	snap := New(sampleRecords())
	next := MergeBatchResults(snap, map[string]domain.ItemResult{
		"v1":      {Status: domain.VideoStatusProcessing},
		"v2":      {Status: domain.VideoStatusCompleted, Transcription: "hello"},
		"v3":      {Status: domain.VideoStatusError},
		"unknown": {Status: domain.VideoStatusCompleted, Transcription: "ghost"},
	})

	want := map[string]domain.VideoStatus{
		"v1": domain.VideoStatusProcessing,
		"v2": domain.VideoStatusCompleted,
		"v3": domain.VideoStatusError,
	}
	for id, status := range want {
		got, _ := next.Lookup(id)
		if got.Status != status {
			t.Fatalf("%s status = %s, want %s", id, got.Status, status)
		}
	}
	if _, ok := next.Lookup("unknown"); ok {
		t.Fatal("merge must not add unknown ids")
	}
	if v2, _ := next.Lookup("v2"); v2.Transcription != "hello" {
		t.Fatalf("v2 transcription = %q, want hello", v2.Transcription)
	}
}

// TestStoreNotifiesSubscribers checks listeners see every new snapshot.
func TestStoreNotifiesSubscribers(t *testing.T) {
	store := NewStore()
	var seen []int
	store.Subscribe(func(s Snapshot) { seen = append(seen, s.Len()) })

	store.Update(func(s Snapshot) Snapshot { return s.ReplaceAll(sampleRecords()) })
	store.Update(func(s Snapshot) Snapshot { return s.RemoveByID("v3") })

	if len(seen) != 2 || seen[0] != 3 || seen[1] != 2 {
		t.Fatalf("seen = %v, want [3 2]", seen)
	}
}

// TestStoreDeliversInCommitOrder keeps a slow listener from seeing an older
// snapshot after a newer one.
func TestStoreDeliversInCommitOrder(t *testing.T) {
	store := NewStore()
	store.Update(func(s Snapshot) Snapshot { return s.ReplaceAll(sampleRecords()) })

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		seen []domain.VideoStatus
	)
	store.Subscribe(func(s Snapshot) {
		r, _ := s.Lookup("v1")
		if r.Status == domain.VideoStatusProcessing {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, r.Status)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.Update(func(s Snapshot) Snapshot { return s.UpdateByID("v1", MarkProcessing) })
	}()
	<-entered
	go func() {
		defer wg.Done()
		store.Update(func(s Snapshot) Snapshot { return s.UpdateByID("v1", MarkCompleted("done")) })
	}()

	time.Sleep(20 * time.Millisecond)
	if r, _ := store.Snapshot().Lookup("v1"); r.Status != domain.VideoStatusProcessing {
		t.Fatalf("store status = %s while first fan-out runs, want processing", r.Status)
	}
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := []domain.VideoStatus{domain.VideoStatusProcessing, domain.VideoStatusCompleted}
	if len(seen) != 2 || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("delivered = %v, want %v", seen, want)
	}
	if r, _ := store.Snapshot().Lookup("v1"); r.Status != seen[len(seen)-1] {
		t.Fatalf("store status = %s, last delivered = %s", r.Status, seen[len(seen)-1])
	}
}
