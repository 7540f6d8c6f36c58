// Package origin decides whether a request's declared origin is permitted.
package origin

import (
	"net/url"
	"strings"
)

// platformSuffix is the deployment platform's wildcard domain; preview and
// production deployments there are always trusted.
const platformSuffix = "vercel.app"

// loopbackHosts are local development origins that are always trusted.
var loopbackHosts = map[string]bool{
	"localhost:5000": true,
	"127.0.0.1:5000": true,
	"localhost":      true,
	"127.0.0.1":      true,
}

// Validator checks request origins against a configured allow-list. Entries
// may be a full origin ("https://app.example.com"), a bare hostname
// ("app.example.com") or a wildcard ("*.example.com").
type Validator struct {
	allowed []string
}

// NewValidator parses a comma-separated allow-list.
func NewValidator(allowedOrigins string) *Validator {
	var allowed []string
	for _, entry := range strings.Split(allowedOrigins, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			allowed = append(allowed, entry)
		}
	}
	return &Validator{allowed: allowed}
}

// IsAllowed reports whether requestOrigin may call origin-restricted routes.
// An absent origin is allowed: non-browser clients send none.
func (v *Validator) IsAllowed(requestOrigin string) bool {
	if requestOrigin == "" {
		return true
	}

	parsed, err := url.Parse(requestOrigin)
	if err != nil {
		return false
	}
	hostname := parsed.Hostname()
	hostPort := hostname
	if port := parsed.Port(); port != "" {
		hostPort = hostname + ":" + port
	}

	if strings.HasSuffix(hostname, platformSuffix) {
		return true
	}
	if loopbackHosts[hostPort] {
		return true
	}

	for _, entry := range v.allowed {
		if strings.HasPrefix(entry, "*") {
			suffix := strings.TrimLeft(entry[1:], ".")
			if strings.HasSuffix(hostPort, suffix) {
				return true
			}
			continue
		}
		if requestOrigin == entry || hostPort == entry {
			return true
		}
		if parsedEntry, err := url.Parse(entry); err == nil && parsedEntry.Hostname() != "" && hostPort == parsedEntry.Hostname() {
			return true
		}
	}
	return false
}
