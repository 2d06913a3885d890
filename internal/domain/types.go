package domain

import "time"

// VideoStatus tracks the transcription lifecycle of one video.
type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "pending"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusError      VideoStatus = "error"
)

// SubtitlesStatus tracks subtitle retrieval independently of transcription.
type SubtitlesStatus string

const (
	SubtitlesStatusIdle      SubtitlesStatus = "idle"
	SubtitlesStatusLoading   SubtitlesStatus = "loading"
	SubtitlesStatusCompleted SubtitlesStatus = "completed"
	SubtitlesStatusError     SubtitlesStatus = "error"
)

// LanguageAuto asks the server to detect the spoken language.
const LanguageAuto = "auto"

// VideoRecord is one unit of work tracked through its own status machine.
type VideoRecord struct {
	ID              string          `json:"id"`
	URL             string          `json:"url"`
	DirectURL       string          `json:"directUrl,omitempty"`
	Title           string          `json:"title"`
	CreatedAt       time.Time       `json:"createdAt"`
	Duration        string          `json:"duration"`
	Status          VideoStatus     `json:"status"`
	Transcription   string          `json:"transcription,omitempty"`
	Subtitles       string          `json:"subtitles,omitempty"`
	SubtitlesStatus SubtitlesStatus `json:"subtitlesStatus"`
	Language        string          `json:"language"`
}

// VideoView is the read model of a record with its duration parsed.
type VideoView struct {
	VideoRecord
	DurationInfo DurationLabel `json:"durationInfo"`
}

// ItemResult is the per-video outcome reported by a batch job poll.
type ItemResult struct {
	Status        VideoStatus `json:"status"`
	Transcription string      `json:"transcription,omitempty"`
}

// BatchStatus tracks each stage of a server-side batch job.
type BatchStatus string

const (
	BatchStatusIdle       BatchStatus = "idle"
	BatchStatusSubmitting BatchStatus = "submitting"
	BatchStatusPolling    BatchStatus = "polling"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// BatchJob stores the active batch identity and lifecycle status.
type BatchJob struct {
	ID      string      `json:"id"`
	Status  BatchStatus `json:"status"`
	Running bool        `json:"running"`
}

// Progress is derived from a collection snapshot and never stored.
type Progress struct {
	Total           int     `json:"total"`
	CompletedCount  int     `json:"completedCount"`
	PendingCount    int     `json:"pendingCount"`
	ProcessingCount int     `json:"processingCount"`
	ErrorCount      int     `json:"errorCount"`
	Percent         float64 `json:"percent"`
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	ServerURL             string      `json:"serverUrl" yaml:"server_url"`
	APIBase               string      `json:"apiBase" yaml:"api_base"`
	OutputDir             string      `json:"outputDir" yaml:"output_dir"`
	Language              string      `json:"language" yaml:"language"`
	PollIntervalSeconds   int         `json:"pollIntervalSeconds" yaml:"poll_interval_seconds"`
	RequestTimeoutSeconds int         `json:"requestTimeoutSeconds" yaml:"request_timeout_seconds"`
	Log                   LogSettings `json:"log" yaml:"log"`
}

// LogSettings configures the application logger and its rotating file.
type LogSettings struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Output     string `json:"output" yaml:"output"`
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"maxSizeMb" yaml:"max_size_mb"`
	MaxBackups int    `json:"maxBackups" yaml:"max_backups"`
	MaxAgeDays int    `json:"maxAgeDays" yaml:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress"`
}
