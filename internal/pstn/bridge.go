// Package pstn provisions inbound telephony bridge sessions that connect
// public-network callers into media channels.
package pstn

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrToken indicates the bridge could not obtain a channel access token.
var ErrToken = errors.New("token issuance failed")

// TokenIssuer produces channel access tokens for the inbound caller.
type TokenIssuer interface {
	Issue(channelName, uid string) (string, error)
}

// Bridge requests telephony bridge sessions from the partner PSTN API.
type Bridge struct {
	endpoint string
	appID    string
	auth     string
	uid      string
	tokens   TokenIssuer
	http     *http.Client
}

// NewBridge creates a Bridge. auth is the pre-encoded Basic credential for
// the PSTN endpoint; uid is the fixed caller principal.
func NewBridge(endpoint, appID, auth, uid string, tokens TokenIssuer, timeout time.Duration) *Bridge {
	return &Bridge{
		endpoint: endpoint,
		appID:    appID,
		auth:     auth,
		uid:      uid,
		tokens:   tokens,
		http:     &http.Client{Timeout: timeout},
	}
}

// dialRequest is the partner PSTN request body.
type dialRequest struct {
	Action  string `json:"action"`
	AppID   string `json:"appid"`
	Region  string `json:"region"`
	UID     string `json:"uid"`
	Channel string `json:"channel"`
	Token   string `json:"token"`
}

// Result carries the partner response for passthrough to the caller. Body is
// nil when the partner body was not valid JSON.
type Result struct {
	StatusCode int
	Body       map[string]any
}

// Dial synthesizes a fresh channel for the requested region, issues a caller
// token and asks the partner for an inbound bridge session. Transport and
// token failures are errors; partner-level rejections come back in Result.
func (b *Bridge) Dial(ctx context.Context, region string) (*Result, error) {
	code := RegionCode(region)

	channel, err := newChannelName(code)
	if err != nil {
		return nil, fmt.Errorf("synthesize channel name: %w", err)
	}

	callerToken, err := b.tokens.Issue(channel, b.uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToken, err)
	}
	if callerToken == "" {
		return nil, fmt.Errorf("%w: signing certificate not configured", ErrToken)
	}

	body, err := json.Marshal(dialRequest{
		Action:  "inbound",
		AppID:   b.appID,
		Region:  code,
		UID:     b.uid,
		Channel: channel,
		Token:   callerToken,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+b.auth)

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PSTN service request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read bridge response: %w", err)
	}

	result := &Result{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, &result.Body); err != nil {
		result.Body = nil
	}

	slog.Info("Bridge session requested", "channel", channel, "region", code, "status", resp.StatusCode)
	return result, nil
}

// newChannelName embeds the region code and a random hex suffix so
// concurrent inbound calls never collide.
func newChannelName(regionCode string) (string, error) {
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_pstn_%s", regionCode, hex.EncodeToString(suffix[:])), nil
}
