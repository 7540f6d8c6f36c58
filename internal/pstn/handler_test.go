package pstn

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/voicebridge/convoai-relay/internal/origin"
)

type staticIssuer struct {
	token string
	err   error
}

func (s staticIssuer) Issue(channelName, uid string) (string, error) {
	return s.token, s.err
}

func newTestHandler(t *testing.T, partnerURL string, tokens TokenIssuer) *httptest.Server {
	t.Helper()
	bridge := NewBridge(partnerURL, "test-app", "cHN0bi1hdXRo", "111", tokens, 5*time.Second)
	h := NewHandler(bridge, origin.NewValidator("https://app.example.com"))

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postPSTN(t *testing.T, srv *httptest.Server, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/pstn", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /pstn failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDialSuccessPassthrough(t *testing.T) {
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Basic cHN0bi1hdXRo" {
			t.Errorf("Unexpected auth header %q", got)
		}
		var dial dialRequest
		if err := json.NewDecoder(r.Body).Decode(&dial); err != nil {
			t.Errorf("Failed to decode partner body: %v", err)
		}
		if dial.Action != "inbound" || dial.Region != "AREA_CODE_JP" || dial.UID != "111" {
			t.Errorf("Unexpected dial request: %+v", dial)
		}
		if !strings.HasPrefix(dial.Channel, "AREA_CODE_JP_pstn_") {
			t.Errorf("Channel missing region prefix: %q", dial.Channel)
		}
		if dial.Token != "tok" {
			t.Errorf("Expected issued token, got %q", dial.Token)
		}
		json.NewEncoder(w).Encode(map[string]any{"taskId": "T1", "number": "+81123"})
	}))
	t.Cleanup(partner.Close)

	srv := newTestHandler(t, partner.URL, staticIssuer{token: "tok"})
	resp := postPSTN(t, srv, `{"region":"Japan"}`, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["taskId"] != "T1" {
		t.Errorf("Expected partner body passthrough, got %v", body)
	}
}

func TestDialMissingBody(t *testing.T) {
	srv := newTestHandler(t, "http://unused.invalid", staticIssuer{token: "tok"})

	resp := postPSTN(t, srv, "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty body, got %d", resp.StatusCode)
	}
}

func TestDialMissingRegion(t *testing.T) {
	srv := newTestHandler(t, "http://unused.invalid", staticIssuer{token: "tok"})

	resp := postPSTN(t, srv, `{}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["error"] != "Region is required" {
		t.Errorf("Unexpected error body: %v", body)
	}
}

func TestDialOriginRejected(t *testing.T) {
	srv := newTestHandler(t, "http://unused.invalid", staticIssuer{token: "tok"})

	resp := postPSTN(t, srv, `{"region":"Japan"}`, map[string]string{
		"Origin": "https://evil.example.net",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.StatusCode)
	}
}

func TestDialAllowedOrigin(t *testing.T) {
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"taskId": "T1"})
	}))
	t.Cleanup(partner.Close)

	srv := newTestHandler(t, partner.URL, staticIssuer{token: "tok"})
	resp := postPSTN(t, srv, `{"region":"Japan"}`, map[string]string{
		"Origin": "https://app.example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for allow-listed origin, got %d", resp.StatusCode)
	}
}

func TestDialPartnerErrorDetails(t *testing.T) {
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "no capacity in region"})
	}))
	t.Cleanup(partner.Close)

	srv := newTestHandler(t, partner.URL, staticIssuer{token: "tok"})
	resp := postPSTN(t, srv, `{"region":"Japan"}`, nil)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["error"] != "PSTN service error" || body["details"] != "no capacity in region" {
		t.Errorf("Unexpected error body: %v", body)
	}
}

func TestDialPartnerErrorUnparseableBody(t *testing.T) {
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	t.Cleanup(partner.Close)

	srv := newTestHandler(t, partner.URL, staticIssuer{token: "tok"})
	resp := postPSTN(t, srv, `{"region":"Japan"}`, nil)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["details"] != "Unknown error occurred" {
		t.Errorf("Expected generic details, got %v", body)
	}
}

func TestDialTransportFailure(t *testing.T) {
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	partner.Close() // nothing listening anymore

	srv := newTestHandler(t, partner.URL, staticIssuer{token: "tok"})
	resp := postPSTN(t, srv, `{"region":"Japan"}`, nil)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500 on transport failure, got %d", resp.StatusCode)
	}
}

func TestDialTokenFailure(t *testing.T) {
	srv := newTestHandler(t, "http://unused.invalid", staticIssuer{token: ""})

	resp := postPSTN(t, srv, `{"region":"Japan"}`, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.HasPrefix(body["error"], "Token generation failed") {
		t.Errorf("Unexpected error body: %v", body)
	}
}
