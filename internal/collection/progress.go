package collection

import "github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"

// Aggregate derives progress counters from records. Percent is 0 for an empty set.
func Aggregate(records []domain.VideoRecord) domain.Progress {
	progress := domain.Progress{Total: len(records)}
	for _, record := range records {
		switch record.Status {
		case domain.VideoStatusCompleted:
			progress.CompletedCount++
		case domain.VideoStatusPending:
			progress.PendingCount++
		case domain.VideoStatusProcessing:
			progress.ProcessingCount++
		case domain.VideoStatusError:
			progress.ErrorCount++
		}
	}

	if progress.Total > 0 {
		progress.Percent = 100 * float64(progress.CompletedCount) / float64(progress.Total)
	}
	return progress
}

// Progress aggregates the snapshot.
func (s Snapshot) Progress() domain.Progress {
	return Aggregate(s.records)
}
