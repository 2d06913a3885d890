// Package collection holds the ordered set of video records. Every mutation
// produces a new Snapshot from the previous one; snapshots are never edited in
// place, so a reader holding one never sees a half-applied change.
package collection

import (
	"github.com/samber/lo"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// Patch transforms one record into its next version.
type Patch func(domain.VideoRecord) domain.VideoRecord

// Snapshot is an immutable, ordered view of the collection keyed by record id.
type Snapshot struct {
	records []domain.VideoRecord
}

// New builds a snapshot from records, keeping the first occurrence of each id.
func New(records []domain.VideoRecord) Snapshot {
	return Snapshot{}.ReplaceAll(records)
}

// ReplaceAll returns a snapshot containing exactly records, deduplicated by id.
func (s Snapshot) ReplaceAll(records []domain.VideoRecord) Snapshot {
	return Snapshot{records: lo.UniqBy(records, recordID)}
}

// UpdateByID applies patch to the record with id. Absent ids leave s unchanged.
func (s Snapshot) UpdateByID(id string, patch Patch) Snapshot {
	_, idx, found := lo.FindIndexOf(s.records, func(r domain.VideoRecord) bool { return r.ID == id })
	if !found {
		return s
	}

	next := make([]domain.VideoRecord, len(s.records))
	copy(next, s.records)
	next[idx] = patch(next[idx])
	next[idx].ID = id
	return Snapshot{records: next}
}

// RemoveByID drops the record with id, if present.
func (s Snapshot) RemoveByID(id string) Snapshot {
	if _, ok := s.Lookup(id); !ok {
		return s
	}
	return Snapshot{records: lo.Reject(s.records, func(r domain.VideoRecord, _ int) bool { return r.ID == id })}
}

// Lookup returns the record with id.
func (s Snapshot) Lookup(id string) (domain.VideoRecord, bool) {
	return lo.Find(s.records, func(r domain.VideoRecord) bool { return r.ID == id })
}

// Records returns a copy of the records in collection order.
func (s Snapshot) Records() []domain.VideoRecord {
	out := make([]domain.VideoRecord, len(s.records))
	copy(out, s.records)
	return out
}

// WithStatus returns the records currently in status, in collection order.
func (s Snapshot) WithStatus(status domain.VideoStatus) []domain.VideoRecord {
	return lo.Filter(s.records, func(r domain.VideoRecord, _ int) bool { return r.Status == status })
}

// Len reports the number of records.
func (s Snapshot) Len() int {
	return len(s.records)
}

func recordID(r domain.VideoRecord) string {
	return r.ID
}
