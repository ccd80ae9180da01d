package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const tokenHeader = "X-Storefront-Access-Token"

type httpStatusError struct {
	operation string
	status    int
	message   string
}

func (e *httpStatusError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("storefront %s status: %d", e.operation, e.status)
	}
	return fmt.Sprintf("storefront %s status: %d: %s", e.operation, e.status, e.message)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any, operation string) error {
	call := func(ctx context.Context) error {
		return c.doGetJSON(ctx, path, query, out, operation)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, "storefront."+path, call, classifyStorefrontError)
	}
	return call(ctx)
}

func (c *Client) doGetJSON(ctx context.Context, path string, query url.Values, out any, operation string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storefront %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &httpStatusError{
			operation: operation,
			status:    resp.StatusCode,
			message:   strings.TrimSpace(string(body)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
