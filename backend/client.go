package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/json"
	"github.com/klauspost/compress/gzhttp"
)

// Interface compliance check.
var _ drawgen.Transport = (*Client)(nil)

// Client implements [drawgen.Transport] for the generation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	bufSize    int
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the backend base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithReadBufferSize sets how many body bytes a stream reads at a time.
func WithReadBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// New creates a [Client]. The default HTTP client negotiates compressed
// responses and decompresses them transparently.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Transport: gzhttp.Transport(http.DefaultTransport)},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		bufSize:    readBufferSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Open posts req to the generation endpoint and returns a [drawgen.Stream]
// over the response events.
func (c *Client) Open(ctx context.Context, req drawgen.Request) (drawgen.Stream, error) {
	body, err := json.MarshalRequest(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("backend: %w: %w", drawgen.ErrRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("opening generation stream", "url", httpReq.URL.String(), "bytes", len(body))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend: %w: %w", drawgen.ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body, c.bufSize), nil
}

// parseHTTPError reads a non-2xx response into an error wrapping
// [drawgen.ErrRequestFailed].
func parseHTTPError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(json.DecodeErrorDetail(data))
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("backend: %w: HTTP %d: %s", drawgen.ErrRequestFailed, resp.StatusCode, detail)
}
