package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voicebridge/convoai-relay/internal/origin"
)

func corsHandler() http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORS(origin.NewValidator("https://app.example.com"))(next)
}

func TestCORSReflectsOrigin(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		origin     string
		wantHeader string
	}{
		{"open route any origin", "/webhook", "https://anything.example.net", "https://anything.example.net"},
		{"pstn allowed origin", "/pstn", "https://app.example.com", "https://app.example.com"},
		{"pstn rejected origin", "/pstn", "https://evil.example.net", ""},
		{"no origin", "/pstn", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			corsHandler().ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/pstn", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	CORS(origin.NewValidator("https://app.example.com"))(next).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for preflight, got %d", w.Code)
	}
	if called {
		t.Error("Preflight should not reach the next handler")
	}
}
