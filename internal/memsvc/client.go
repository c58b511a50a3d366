package memsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.mem0.ai"
	defaultTimeout = 30 * time.Second

	// outputFormat pins the response shape of the managed API.
	outputFormat = "v1.1"
)

// ClientConfig holds configuration for the HTTP memory service client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultClientConfig returns a default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
}

// Client implements Service against a mem0-style managed memory API.
//
// The transport timeout configured here is the only timeout in the system;
// no retries are performed, each failed call is terminal.
type Client struct {
	config ClientConfig
	client *http.Client
}

// NewClient creates a new memory service client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type addRequest struct {
	Messages     []Message `json:"messages"`
	UserID       string    `json:"user_id"`
	OutputFormat string    `json:"output_format"`
}

type addResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

type searchRequest struct {
	Query        string `json:"query"`
	UserID       string `json:"user_id"`
	OutputFormat string `json:"output_format"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

type getAllResponse struct {
	Results []Entry `json:"results"`
}

type updateProjectRequest struct {
	CustomInstructions string `json:"custom_instructions"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Add stores messages under the given user.
func (c *Client) Add(ctx context.Context, messages []Message, opts AddOptions) (string, error) {
	if len(messages) == 0 {
		return "", NewServiceError("add", ErrEmptyContent)
	}

	body := addRequest{
		Messages:     messages,
		UserID:       opts.UserID,
		OutputFormat: outputFormat,
	}

	var resp addResponse
	if err := c.do(ctx, "POST", "/v1/memories/", nil, body, &resp); err != nil {
		return "", NewServiceError("add", err)
	}

	if len(resp.Results) == 0 {
		return "", nil
	}
	return resp.Results[0].ID, nil
}

// Search performs semantic search over stored memories.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	if query == "" {
		return nil, NewServiceError("search", ErrEmptyQuery)
	}

	body := searchRequest{
		Query:        query,
		UserID:       opts.UserID,
		OutputFormat: outputFormat,
	}

	var resp searchResponse
	if err := c.do(ctx, "POST", "/v1/memories/search/", nil, body, &resp); err != nil {
		return nil, NewServiceError("search", err)
	}

	return resp.Results, nil
}

// GetAll lists one page of stored memories for a user.
func (c *Client) GetAll(ctx context.Context, opts GetAllOptions) ([]Entry, error) {
	query := url.Values{}
	if opts.UserID != "" {
		query.Set("user_id", opts.UserID)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	var resp getAllResponse
	if err := c.do(ctx, "GET", "/v1/memories/", query, nil, &resp); err != nil {
		return nil, NewServiceError("get_all", err)
	}

	return resp.Results, nil
}

// UpdateProject pushes project-level custom instructions to the service.
func (c *Client) UpdateProject(ctx context.Context, instructions string) error {
	body := updateProjectRequest{CustomInstructions: instructions}
	if err := c.do(ctx, "PATCH", "/v1/project/", nil, body, nil); err != nil {
		return NewServiceError("update_project", err)
	}
	return nil
}

// do performs a single request against the service and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Token "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ErrContextCanceled
		}
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// statusError maps an HTTP error status to the package error taxonomy.
func statusError(status int, body []byte) error {
	var errResp errorResponse
	detail := ""
	if json.Unmarshal(body, &errResp) == nil {
		detail = errResp.Detail
		if detail == "" {
			detail = errResp.Error
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, detail)
		}
		return ErrServiceUnavailable
	default:
		if detail != "" {
			return fmt.Errorf("unexpected status %d: %s", status, detail)
		}
		return fmt.Errorf("unexpected status %d: %s", status, string(body))
	}
}
