// Package api is the HTTP client for the remote hub service. Every
// operation is a single round trip; callers own retry and recovery
// policy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"hubchat/internal/types"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Health probes the liveness endpoint. Any 2xx means the service is
// reachable.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: "health check failed"}
	}
	return nil
}

// ListHubs fetches the hub catalog.
func (c *Client) ListHubs(ctx context.Context) ([]types.Hub, error) {
	resp, err := c.get(ctx, "/hubs")
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	var out struct {
		Hubs []types.Hub `json:"hubs"`
	}
	if err := decodeOK(resp, &out, "failed to fetch hubs"); err != nil {
		return nil, err
	}
	return out.Hubs, nil
}

// ListLoadedHubs fetches the names of hubs currently resident in server
// memory.
func (c *Client) ListLoadedHubs(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, "/hubs/loaded/list")
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	var out struct {
		LoadedHubs []string `json:"loaded_hubs"`
	}
	if err := decodeOK(resp, &out, "failed to fetch loaded hubs"); err != nil {
		return nil, err
	}
	return out.LoadedHubs, nil
}

// LoadHub asks the server to activate a hub. Returns the server's
// confirmation message.
func (c *Client) LoadHub(ctx context.Context, name string) (string, error) {
	return c.hubOp(ctx, name, "load", fmt.Sprintf("Hub %q loaded successfully", name), "Failed to load hub")
}

// UnloadHub asks the server to deactivate a hub.
func (c *Client) UnloadHub(ctx context.Context, name string) (string, error) {
	return c.hubOp(ctx, name, "unload", fmt.Sprintf("Hub %q unloaded", name), "Failed to unload hub")
}

// SyncHub asks the server to re-index the hub's files. Callers refresh
// the catalog afterwards to pick up the new file count.
func (c *Client) SyncHub(ctx context.Context, name string) (string, error) {
	return c.hubOp(ctx, name, "sync", "Sync completed", "Sync failed")
}

func (c *Client) hubOp(ctx context.Context, name, op, okFallback, errFallback string) (string, error) {
	resp, err := c.post(ctx, "/hubs/"+url.PathEscape(name)+"/"+op, nil)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", readError(resp, errFallback)
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Message == "" {
		return okFallback, nil
	}
	return out.Message, nil
}

type ChatResponse struct {
	Answer  string         `json:"answer"`
	Sources []types.Source `json:"sources,omitempty"`
}

// Chat sends a query against a loaded hub, always requesting sources.
func (c *Client) Chat(ctx context.Context, query, hubName string) (*ChatResponse, error) {
	body := map[string]any{
		"query":           query,
		"hub_name":        hubName,
		"include_sources": true,
	}
	resp, err := c.post(ctx, "/chat", body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	var out ChatResponse
	if err := decodeOK(resp, &out, "Failed to get response"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func decodeOK(resp *http.Response, out any, fallback string) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readError(resp, fallback)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readError builds an APIError from a failure envelope, normalizing the
// detail field's three possible shapes into one string.
func readError(resp *http.Response, fallback string) error {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		_ = json.Unmarshal(data, &envelope)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Detail:     normalizeDetail(envelope.Detail, fallback),
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}
