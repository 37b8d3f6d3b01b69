package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single content request, independent of the
// session's own time limit.
const DefaultFetchTimeout = 5 * time.Second

// HTTPProvider fetches chunks from a JSON endpoint:
//
//	GET {base}?lang=en&source=words&difficulty=hard&min=250
//	→ {"text": "..."}
type HTTPProvider struct {
	base    string
	client  *http.Client
	timeout time.Duration
}

// NewHTTPProvider returns a provider for the given endpoint URL. A
// non-positive timeout uses DefaultFetchTimeout.
func NewHTTPProvider(base string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPProvider{
		base:    base,
		client:  &http.Client{},
		timeout: timeout,
	}
}

type chunkResponse struct {
	Text string `json:"text"`
}

// Fetch requests one chunk. Timeouts and non-200 responses are returned as
// errors; the caller retries on the next watermark crossing.
func (p *HTTPProvider) Fetch(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("lang", req.Lang)
	q.Set("source", req.Source)
	q.Set("difficulty", req.Difficulty)
	q.Set("min", strconv.Itoa(req.minLength()))
	if len(req.ExcludeRecent) > 0 {
		q.Set("exclude", strings.Join(req.ExcludeRecent, ","))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build content request: %w", err)
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("content fetch failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content fetch failed: status %d", resp.StatusCode)
	}

	var chunk chunkResponse
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return "", fmt.Errorf("failed to decode content response: %w", err)
	}
	if chunk.Text == "" {
		return "", fmt.Errorf("content response is empty")
	}
	return chunk.Text, nil
}
