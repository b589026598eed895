package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Func is the transport capability consumed by the Engine: fetch one URL
// and return the HTTP status code and response body. Implementations must
// be safe for concurrent use.
type Func func(ctx context.Context, url string) (status int, body []byte, err error)

// NewHTTPFunc builds a Func on top of a standard HTTP client. Response
// bodies are capped at maxBodySize to prevent memory exhaustion from
// unexpectedly large responses.
func NewHTTPFunc(client *http.Client, userAgent string, maxBodySize int64) Func {
	return func(ctx context.Context, url string) (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := client.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return 0, nil, fmt.Errorf("failed to read body: %w", err)
		}
		return resp.StatusCode, body, nil
	}
}
