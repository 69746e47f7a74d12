package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/storage"
)

// HTTPClient implements DataSource by calling the repbook REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the log lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// errStatus carries a non-200 response so callers can map 404 and 503.
type errStatus struct {
	path string
	code int
	body []byte
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.code, e.body)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errStatus{path: path, code: resp.StatusCode, body: body}
	}

	return body, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListPrograms(ctx context.Context) ([]models.ProgramSummary, error) {
	var out []models.ProgramSummary
	if err := c.getJSON(ctx, "/api/v1/programs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProgram(ctx context.Context, name string) (*models.Program, error) {
	var p models.Program
	err := c.getJSON(ctx, "/api/v1/programs/"+url.PathEscape(name), nil, &p)
	if se, ok := err.(*errStatus); ok && se.code == http.StatusNotFound {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) SearchLibrary(ctx context.Context, muscle, query string) ([]models.LibraryEntry, error) {
	params := url.Values{}
	if muscle != "" {
		params.Set("muscle", muscle)
	}
	if query != "" {
		params.Set("q", query)
	}
	var out []models.LibraryEntry
	if err := c.getJSON(ctx, "/api/v1/library", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetHistory(ctx context.Context, limit int) ([]models.Session, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []models.Session
	if err := c.getJSON(ctx, "/api/v1/history", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetRecords(ctx context.Context) (*Records, error) {
	var out Records
	if err := c.getJSON(ctx, "/api/v1/records", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) QueryArchivedSets(ctx context.Context, start, end time.Time, exercise string) ([]storage.ArchivedSet, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))
	if exercise != "" {
		params.Set("exercise", exercise)
	}
	var out []storage.ArchivedSet
	err := c.getJSON(ctx, "/api/v1/archive/sets", params, &out)
	if se, ok := err.(*errStatus); ok && se.code == http.StatusServiceUnavailable {
		return nil, ErrNoArchive
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
