package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// WireTimeLayout is the ISO-8601 form sent for date bounds.
const WireTimeLayout = "2006-01-02T15:04:05.000Z"

// JobStatusCompleted is the overall status of a finished batch job.
const JobStatusCompleted = "completed"

var validate = validator.New(validator.WithRequiredStructEnabled())

// FetchVideosRequest asks for an account's videos published in a date range.
type FetchVideosRequest struct {
	Username  string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
}

// Validate rejects incomplete requests before anything is sent.
func (r FetchVideosRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Kind: KindValidation, Op: "fetch videos", Message: err.Error(), Err: err}
	}

	var message string
	switch first := fieldErrs[0]; {
	case first.Field() == "Username":
		message = "enter a TikTok username or profile link"
	case first.Tag() == "gtefield":
		message = "end date must not be before start date"
	default:
		message = "select a date range"
	}
	return &Error{Kind: KindValidation, Op: "fetch videos", Message: message, Err: err}
}

// TranscribeRequest asks for one video to be transcribed.
type TranscribeRequest struct {
	VideoURL  string
	DirectURL string
	Language  string
}

// BatchVideo is one entry of a batch submission.
type BatchVideo struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	DirectURL string `json:"directUrl,omitempty"`
	Language  string `json:"language"`
}

// JobStatusResponse is the state of a batch job with per-video results.
type JobStatusResponse struct {
	Status  string                       `json:"status"`
	Results map[string]domain.ItemResult `json:"results"`
}

// Completed reports whether the job finished.
func (r JobStatusResponse) Completed() bool {
	return r.Status == JobStatusCompleted
}

// SubtitlesRequest asks for the platform subtitles of one video.
type SubtitlesRequest struct {
	VideoURL string
	Language string
}

// FetchVideos calls POST /fetch-videos.
func (c *Client) FetchVideos(ctx context.Context, req FetchVideosRequest) ([]domain.VideoRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := struct {
		Username  string `json:"username"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}{
		Username:  req.Username,
		StartDate: req.StartDate.UTC().Format(WireTimeLayout),
		EndDate:   req.EndDate.UTC().Format(WireTimeLayout),
	}

	var resp struct {
		Videos *[]wireVideo `json:"videos"`
	}
	if err := c.do(ctx, "fetch videos", http.MethodPost, "/fetch-videos", body, &resp); err != nil {
		return nil, err
	}
	if resp.Videos == nil {
		return nil, &Error{Kind: KindMalformed, Op: "fetch videos", Message: "invalid response from server: missing videos"}
	}

	records := make([]domain.VideoRecord, 0, len(*resp.Videos))
	for _, v := range *resp.Videos {
		records = append(records, v.record())
	}
	return records, nil
}

// Transcribe calls POST /transcribe and returns the transcript text. The
// language is omitted for auto-detection.
func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	body := struct {
		VideoURL  string `json:"video_url"`
		DirectURL string `json:"direct_url,omitempty"`
		Language  string `json:"language,omitempty"`
	}{
		VideoURL:  req.VideoURL,
		DirectURL: req.DirectURL,
		Language:  explicitLanguage(req.Language),
	}

	var resp struct {
		Transcription string `json:"transcription"`
	}
	if err := c.do(ctx, "transcribe", http.MethodPost, "/transcribe", body, &resp); err != nil {
		return "", err
	}
	return resp.Transcription, nil
}

// SubmitBatch calls POST /transcribe-batch and returns the job id.
func (c *Client) SubmitBatch(ctx context.Context, videos []BatchVideo) (string, error) {
	body := struct {
		Videos []BatchVideo `json:"videos"`
	}{Videos: videos}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.do(ctx, "submit batch", http.MethodPost, "/transcribe-batch", body, &resp); err != nil {
		return "", err
	}
	if resp.JobID == "" {
		return "", &Error{Kind: KindMalformed, Op: "submit batch", Message: "invalid response from server: missing job id"}
	}
	return resp.JobID, nil
}

// JobStatus calls GET /job/{job_id}.
func (c *Client) JobStatus(ctx context.Context, jobID string) (JobStatusResponse, error) {
	var resp JobStatusResponse
	if err := c.do(ctx, "job status", http.MethodGet, "/job/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return JobStatusResponse{}, err
	}
	if resp.Status == "" {
		return JobStatusResponse{}, &Error{Kind: KindMalformed, Op: "job status", Message: "invalid response from server: missing status"}
	}
	return resp, nil
}

// Subtitles calls POST /subtitles and returns the subtitle text.
func (c *Client) Subtitles(ctx context.Context, req SubtitlesRequest) (string, error) {
	body := struct {
		VideoURL string `json:"video_url"`
		Language string `json:"language,omitempty"`
	}{
		VideoURL: req.VideoURL,
		Language: explicitLanguage(req.Language),
	}

	var resp struct {
		Subtitles string `json:"subtitles"`
	}
	if err := c.do(ctx, "subtitles", http.MethodPost, "/subtitles", body, &resp); err != nil {
		return "", err
	}
	return resp.Subtitles, nil
}

// Health calls GET /health and expects status "ok".
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return &Error{Kind: KindServer, Op: "health", Message: "unexpected health status: " + resp.Status}
	}
	return nil
}

func explicitLanguage(language string) string {
	if language == domain.LanguageAuto {
		return ""
	}
	return language
}

// wireVideo is the backend's video shape. Duration and id may arrive as
// numbers and createdAt may lack a zone or be null.
type wireVideo struct {
	ID        flexString `json:"id"`
	URL       string     `json:"url"`
	DirectURL string     `json:"directUrl"`
	Title     string     `json:"title"`
	CreatedAt flexTime   `json:"createdAt"`
	Duration  flexString `json:"duration"`
}

func (v wireVideo) record() domain.VideoRecord {
	return domain.VideoRecord{
		ID:        string(v.ID),
		URL:       v.URL,
		DirectURL: v.DirectURL,
		Title:     v.Title,
		CreatedAt: time.Time(v.CreatedAt),
		Duration:  string(v.Duration),
	}
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = flexString(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*s = flexString(number.String())
	return nil
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var text *string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*t = flexTime{}
	if text == nil || strings.TrimSpace(*text) == "" {
		return nil
	}
	for _, layout := range createdAtLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(*text)); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	return nil
}
