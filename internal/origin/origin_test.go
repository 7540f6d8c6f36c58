package origin

import "testing"

func TestIsAllowed(t *testing.T) {
	v := NewValidator("https://app.example.com, dashboard.example.org, *.trusted.io")

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"absent origin", "", true},
		{"platform deployment", "https://foo.vercel.app", true},
		{"loopback with port", "http://localhost:5000", true},
		{"loopback without port", "http://127.0.0.1", true},
		{"exact origin match", "https://app.example.com", true},
		{"bare hostname match", "https://dashboard.example.org", true},
		{"wildcard match", "https://api.trusted.io", true},
		{"wildcard root match", "https://trusted.io", true},
		{"unlisted origin", "https://evil.example.com", false},
		{"wrong scheme on exact entry", "http://app.example.com", true},
		{"loopback wrong port", "http://localhost:9999", false},
		{"suffix lookalike", "https://nottrusted.example.net", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsAllowed(tt.origin); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestIsAllowedEmptyList(t *testing.T) {
	v := NewValidator("")

	if v.IsAllowed("https://anything.example.com") {
		t.Error("Empty allow-list should reject unknown origins")
	}
	if !v.IsAllowed("") {
		t.Error("Absent origin should still be allowed")
	}
}
