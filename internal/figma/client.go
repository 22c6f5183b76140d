package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.figma.com"
	DefaultTimeout = 60 * time.Second

	maxBody = 256 << 20
)

// Client fetches Figma files over the REST API.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

// NewClient returns a client with the fixed fetch timeout applied.
func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("figma: http %d", e.Code)
	}
	return fmt.Sprintf("figma: http %d: %s", e.Code, e.Body)
}

// FetchFile performs the single GET for the file's document tree.
func (c *Client) FetchFile(ctx context.Context, fileKey string) (*File, error) {
	url := c.BaseURL + "/v1/files/" + fileKey
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("figma: new request: %w", err)
	}
	req.Header.Set("X-Figma-Token", c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("figma: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	var f File
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&f); err != nil {
		return nil, fmt.Errorf("figma: json decode: %w", err)
	}
	if f.Document == nil {
		return nil, fmt.Errorf("figma: response has no document")
	}
	return &f, nil
}
