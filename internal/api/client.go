// Package api is the HTTP client for the transcription backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/logging"
)

// DefaultAPIBase is used when no base path is configured.
const DefaultAPIBase = "/api"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const snippetLimit = 200

// Client calls the backend endpoints. All responses are read as text first and
// only then decoded, so a broken body surfaces as KindMalformed.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logrus.FieldLogger
}

// NewClient creates a client rooted at baseURL. A nil httpClient uses a
// client without timeout.
func NewClient(baseURL string, httpClient *http.Client, logger logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logging.OrNop(logger),
	}
}

// BaseURL resolves apiBase against serverURL. An absolute apiBase wins.
func BaseURL(serverURL, apiBase string) string {
	apiBase = strings.TrimSpace(apiBase)
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if strings.HasPrefix(apiBase, "http://") || strings.HasPrefix(apiBase, "https://") {
		return strings.TrimRight(apiBase, "/")
	}
	return strings.TrimRight(strings.TrimSpace(serverURL), "/") + "/" + strings.Trim(apiBase, "/")
}

// Endpoint returns the base URL this client calls.
func (c *Client) Endpoint() string {
	return c.baseURL
}

// do sends one request and decodes the reply into out.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.WithFields(logrus.Fields{"op": op, "request_id": requestID})
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("read response failed")
		return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Err: err}
	}
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"bytes":    len(raw),
		"duration": time.Since(started).String(),
	}).Debug("response received")

	var envelope *struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return malformed(op, resp.StatusCode, raw, err)
	}
	if envelope == nil {
		return malformed(op, resp.StatusCode, raw, errNotObject)
	}

	serverMessage := errorText(envelope.Error)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || serverMessage != "" {
		if serverMessage == "" {
			serverMessage = fmt.Sprintf("server error: %d", resp.StatusCode)
		}
		return &Error{Kind: KindServer, Op: op, Status: resp.StatusCode, Message: serverMessage}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed(op, resp.StatusCode, raw, err)
	}
	return nil
}

var errNotObject = errors.New("response is not a JSON object")

// malformed builds a KindMalformed error quoting the start of the body.
func malformed(op string, status int, raw []byte, cause error) *Error {
	return &Error{
		Kind:    KindMalformed,
		Op:      op,
		Status:  status,
		Message: "invalid response from server: " + snippet(raw),
		Err:     cause,
	}
}

// errorText extracts a truthy error field. Strings are used as is; false,
// zero, null and empty strings mean no error; anything else is quoted raw.
func errorText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", "null", "false", "0", `""`:
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return trimmed
}

// snippet returns at most snippetLimit runes of raw.
func snippet(raw []byte) string {
	if utf8.RuneCount(raw) <= snippetLimit {
		return string(raw)
	}
	runes := []rune(string(raw))
	return string(runes[:snippetLimit])
}
