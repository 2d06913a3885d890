// Package export writes the collection and single transcripts to disk.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// ErrNothingToExport is returned for an empty collection.
var ErrNothingToExport = errors.New("no videos to export")

// ErrNoTranscription is returned when a video has no transcript yet.
var ErrNoTranscription = errors.New("video has no transcription")

var csvHeader = []string{"id", "url", "title", "transcription"}

// Exporter writes files under a fixed directory.
type Exporter struct {
	dir    string
	now    func() time.Time
	create func(path string) (io.WriteCloser, error)
	remove func(path string) error
}

// New creates an exporter rooted at dir.
func New(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now, create: createExclusive, remove: os.Remove}
}

// createExclusive opens a new file and fails if path already exists.
func createExclusive(path string) (io.WriteCloser, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// CSV writes one row per record and returns the file path.
func (e *Exporter) CSV(records []domain.VideoRecord) (string, error) {
	if len(records) == 0 {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("tiktok_transcriptions_%d.csv", e.now().UnixMilli())
	path := filepath.Join(e.dir, name)
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(e.dir, fmt.Sprintf("tiktok_transcriptions_%d_%s.csv", e.now().UnixMilli(), uuid.NewString()[:8]))
	}

	file, err := e.create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}

	writeErr := writeCSV(file, records)
	closeErr := file.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		if removeErr := e.remove(path); removeErr != nil {
			err = errors.Join(err, fmt.Errorf("remove partial csv: %w", removeErr))
		}
		return "", err
	}
	return path, nil
}

// writeCSV writes the header and one row per record.
func writeCSV(out io.Writer, records []domain.VideoRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write([]string{r.ID, r.URL, r.Title, r.Transcription}); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Transcription writes the transcript of record to transcription_<id>.txt.
func (e *Exporter) Transcription(record domain.VideoRecord) (string, error) {
	if strings.TrimSpace(record.Transcription) == "" {
		return "", ErrNoTranscription
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(e.dir, "transcription_"+safeName(record.ID)+".txt")
	if err := os.WriteFile(path, []byte(record.Transcription), 0o644); err != nil {
		return "", fmt.Errorf("write transcription: %w", err)
	}
	return path, nil
}

// safeName keeps ids usable as file names.
func safeName(id string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(id))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return uuid.NewString()
	}
	return cleaned
}
