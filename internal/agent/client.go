package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the conversational AI partner REST endpoints with Basic auth.
type Client struct {
	baseURL   string
	appID     string
	apiKey    string
	apiSecret string
	http      *http.Client
}

// NewClient creates a partner API client. The timeout bounds each call;
// partner outages surface as ordinary errors, never as hung requests.
func NewClient(baseURL, appID, apiKey, apiSecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		appID:     appID,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: timeout},
	}
}

// Join asks the partner to start an agent on a channel. A non-200 response is
// an error; callers additionally check the returned status field.
func (c *Client) Join(ctx context.Context, join JoinRequest) (*JoinResponse, error) {
	body, err := json.Marshal(join)
	if err != nil {
		return nil, fmt.Errorf("marshal join request: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/join", c.baseURL, c.appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build join request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("join request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("join request: partner returned %d: %s", resp.StatusCode, snippet)
	}

	var out JoinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode join response: %w", err)
	}
	return &out, nil
}

// Leave asks the partner to remove the agent identified by agentID.
func (c *Client) Leave(ctx context.Context, agentID string) error {
	url := fmt.Sprintf("%s/projects/%s/agents/%s/leave", c.baseURL, c.appID, agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build leave request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("leave request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("leave request: partner returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
