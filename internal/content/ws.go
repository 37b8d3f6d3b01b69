package content

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsMessage is the request/response envelope spoken with a content service
// over a websocket.
type wsMessage struct {
	Type       string   `json:"type"`
	Lang       string   `json:"lang,omitempty"`
	Source     string   `json:"source,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	MinLength  int      `json:"minLength,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	Text       string   `json:"text,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// WSProvider fetches chunks over a persistent websocket connection. The
// connection is dialed lazily on the first fetch and redialed after errors,
// so a dropped connection behaves like any other recoverable fetch failure.
type WSProvider struct {
	url     string
	timeout time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSProvider returns a provider for the given websocket URL. A
// non-positive timeout uses DefaultFetchTimeout.
func NewWSProvider(url string, timeout time.Duration) *WSProvider {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &WSProvider{url: url, timeout: timeout}
}

// Fetch sends one chunk request and waits for the matching response. Only
// one request is in flight per provider, matching the engine's
// single-outstanding-fetch rule.
func (p *WSProvider) Fetch(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connect(ctx)
	if err != nil {
		return "", err
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return "", fmt.Errorf("content fetch failed: %w", err)
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return "", fmt.Errorf("content fetch failed: %w", err)
		}
	}

	out := wsMessage{
		Type:       "request_content",
		Lang:       req.Lang,
		Source:     req.Source,
		Difficulty: req.Difficulty,
		MinLength:  req.minLength(),
		Exclude:    req.ExcludeRecent,
	}
	if err := conn.WriteJSON(out); err != nil {
		p.drop()
		return "", fmt.Errorf("content fetch failed: %w", err)
	}

	var in wsMessage
	if err := conn.ReadJSON(&in); err != nil {
		p.drop()
		return "", fmt.Errorf("content fetch failed: %w", err)
	}
	if in.Type == "error" || in.Error != "" {
		return "", fmt.Errorf("content service error: %s", in.Error)
	}
	if in.Text == "" {
		return "", fmt.Errorf("content response is empty")
	}
	return in.Text, nil
}

// Close shuts the connection down.
func (p *WSProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *WSProvider) connect(ctx context.Context) (*websocket.Conn, error) {
	if p.conn != nil {
		return p.conn, nil
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial content service: %w", err)
	}
	p.conn = conn
	return conn, nil
}

func (p *WSProvider) drop() {
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil {
			// Best-effort close on a broken connection.
			_ = cerr
		}
		p.conn = nil
	}
}
