package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// URLChecker reports whether an external URL is reachable
type URLChecker interface {
	Check(ctx context.Context, rawURL string) error
}

// HTTPURLChecker probes URLs with HEAD, falling back to GET for servers that reject HEAD
type HTTPURLChecker struct {
	client *http.Client
}

// NewHTTPURLChecker creates a checker bounded by timeout
func NewHTTPURLChecker(timeout time.Duration) *HTTPURLChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPURLChecker{client: &http.Client{Timeout: timeout}}
}

// Check returns nil when rawURL answers with a 2xx or 3xx status
func (c *HTTPURLChecker) Check(ctx context.Context, rawURL string) error {
	status, err := c.do(ctx, http.MethodHead, rawURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("responded with status %d", status)
	}
	return nil
}

func (c *HTTPURLChecker) do(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// isAbsoluteHTTPURL reports whether raw is an absolute http or https URL
func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
