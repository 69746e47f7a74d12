package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/repbook/internal/ingest"
)

// RejectedError is returned when the server refuses a file outright (4xx).
// Retrying the same bytes would not help.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (status %d): %s", e.Status, e.Message)
}

// Client sends preset files to a repbook server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	attempts   int
	backoff    func(attempt int) time.Duration
}

// NewClient creates a new HTTP client for the repbook server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		attempts: 3,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		},
	}
}

// ServerURL returns the base URL uploads are sent to.
func (c *Client) ServerURL() string { return c.serverURL }

// UploadFile POSTs one preset file to the server's upload endpoint.
// Network errors and 5xx responses are retried with exponential backoff;
// a 4xx response returns a *RejectedError immediately.
func (c *Client) UploadFile(ctx context.Context, filename string, data []byte) (*ingest.Result, error) {
	u := c.serverURL + "/api/v1/programs/upload?" + url.Values{"filename": {filepath.Base(filename)}}.Encode()

	var lastErr error
	for attempt := range c.attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType(filename))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var res ingest.Result
			if err := json.Unmarshal(body, &res); err != nil {
				return nil, fmt.Errorf("decoding upload result: %w", err)
			}
			return &res, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, &RejectedError{Status: resp.StatusCode, Message: errorMessage(body)}
		}
		lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// errorMessage extracts {"error": "..."} from a response body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// IsRejected reports whether err is a server-side rejection.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}
