package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// apiClient is a minimal JSON client for a running daemon API.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

// newAPIClient creates a client for the daemon listening at addr
// (a bare "host:port" or a full URL).
func newAPIClient(addr string) (*apiClient, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("daemon address cannot be empty")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	baseURL, err := url.JoinPath(addr, "/api", "v1")
	if err != nil {
		return nil, fmt.Errorf("invalid daemon address %q: %w", addr, err)
	}

	return &apiClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// get fetches path (plus optional query values) and decodes the JSON response into out.
func (c *apiClient) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach daemon: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read daemon response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode daemon response: %w", err)
	}
	return nil
}

// apiError surfaces the detail field of a problem+json error response.
func apiError(statusCode int, body []byte) error {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil && problem.Detail != "" {
		return fmt.Errorf("daemon returned %d: %s", statusCode, problem.Detail)
	}
	return fmt.Errorf("daemon returned %d", statusCode)
}
