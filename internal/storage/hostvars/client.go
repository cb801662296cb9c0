package hostvars

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/larkspur-games/chronicle/internal/storage"
)

// Client reads and writes host variables over the platform's HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a host variable client. token may be empty when the host
// does not require one.
func NewClient(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("host base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse host base url: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type varPayload struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
	Value     string `json:"value,omitempty"`
}

// Get fetches one variable; a missing key maps to storage.ErrNotFound.
func (c *Client) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/vars/%s/%s", c.baseURL, url.PathEscape(sessionID), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build get request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get host var %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("host var %s: %w", key, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get host var %s: status %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload varPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode host var %s: %w", key, err)
	}
	return []byte(payload.Value), nil
}

// Set replaces one variable.
func (c *Client) Set(ctx context.Context, sessionID, key string, value []byte) error {
	body, err := json.Marshal(varPayload{SessionID: sessionID, Key: key, Value: string(value)})
	if err != nil {
		return fmt.Errorf("encode host var %s: %w", key, err)
	}
	endpoint := fmt.Sprintf("%s/vars/%s/%s", c.baseURL, url.PathEscape(sessionID), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build set request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("set host var %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("set host var %s: status %d: %s", key, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
