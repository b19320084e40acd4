package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"NewsIngest/internal/apperr"
)

const maxDocumentBytes = 10 << 20

// Client retrieves raw feed documents over HTTP. It performs network I/O
// only; parsing happens elsewhere.
type Client struct {
	http *http.Client
}

// New wires an HTTP client; the default carries a bounded timeout so a stuck
// source cannot stall a sweep.
func New(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{http: client}
}

// Fetch downloads one document and returns its body as text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.NewFetch(url, err)
	}
	req.Header.Set("User-Agent", "NewsIngest/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.NewFetch(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.NewFetch(url, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", apperr.NewFetch(url, err)
	}

	return string(body), nil
}
