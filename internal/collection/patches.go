package collection

import "github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"

// MarkProcessing moves a record into processing.
func MarkProcessing(r domain.VideoRecord) domain.VideoRecord {
	r.Status = domain.VideoStatusProcessing
	return r
}

// MarkCompleted stores the transcription result.
func MarkCompleted(text string) Patch {
	return func(r domain.VideoRecord) domain.VideoRecord {
		r.Status = domain.VideoStatusCompleted
		r.Transcription = text
		return r
	}
}

// MarkError moves a record into the error state.
func MarkError(r domain.VideoRecord) domain.VideoRecord {
	r.Status = domain.VideoStatusError
	return r
}

// MarkSubtitlesLoading flags a subtitle request in flight.
func MarkSubtitlesLoading(r domain.VideoRecord) domain.VideoRecord {
	r.SubtitlesStatus = domain.SubtitlesStatusLoading
	return r
}

// MarkSubtitlesCompleted stores fetched subtitles.
func MarkSubtitlesCompleted(text string) Patch {
	return func(r domain.VideoRecord) domain.VideoRecord {
		r.SubtitlesStatus = domain.SubtitlesStatusCompleted
		r.Subtitles = text
		return r
	}
}

// MarkSubtitlesError records a failed subtitle request.
func MarkSubtitlesError(r domain.VideoRecord) domain.VideoRecord {
	r.SubtitlesStatus = domain.SubtitlesStatusError
	return r
}

// MergeBatchResults folds one batch poll into the snapshot. Ids the snapshot
// does not contain are ignored, as are unknown result statuses.
func MergeBatchResults(s Snapshot, results map[string]domain.ItemResult) Snapshot {
	next := s
	for _, record := range s.records {
		result, ok := results[record.ID]
		if !ok {
			continue
		}
		switch result.Status {
		case domain.VideoStatusProcessing:
			next = next.UpdateByID(record.ID, MarkProcessing)
		case domain.VideoStatusCompleted:
			next = next.UpdateByID(record.ID, MarkCompleted(result.Transcription))
		case domain.VideoStatusError:
			next = next.UpdateByID(record.ID, MarkError)
		}
	}
	return next
}
