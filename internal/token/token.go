// Package token issues signed, time-bounded channel access tokens.
package token

import (
	"fmt"
	"time"
)

// Issuer produces RTC access tokens bound to a channel and principal.
type Issuer struct {
	appID          string
	appCertificate string
	ttl            time.Duration
}

// NewIssuer creates an Issuer for the given application identity. An empty
// certificate disables signing: Issue then returns the empty-token sentinel.
func NewIssuer(appID, appCertificate string, ttl time.Duration) *Issuer {
	return &Issuer{
		appID:          appID,
		appCertificate: appCertificate,
		ttl:            ttl,
	}
}

// Issue returns a publisher token granting uid access to channelName until
// now + TTL. When no signing certificate is configured it returns "", not an
// error; callers must treat the empty token as a failure.
func (i *Issuer) Issue(channelName, uid string) (string, error) {
	if i.appCertificate == "" {
		return "", nil
	}

	expireTs := uint32(time.Now().Unix() + int64(i.ttl.Seconds()))

	t := newAccessToken(i.appID, i.appCertificate, channelName, uid)
	t.addPrivilege(privJoinChannel, expireTs)

	signed, err := t.build()
	if err != nil {
		return "", fmt.Errorf("build token for channel %q: %w", channelName, err)
	}
	return signed, nil
}
