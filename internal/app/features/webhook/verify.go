package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

// ErrVerification means the delivery failed signature or timestamp checks.
var ErrVerification = errors.New("webhook verification failed")

// ErrNoSecret is returned by NewVerifier when no signing secret is configured.
// The returned Verifier rejects every delivery.
var ErrNoSecret = errors.New("webhook signing secret is not configured")

// Verifier checks Svix signatures (svix-id, svix-timestamp, svix-signature)
// over the raw request body.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier builds a Verifier for a "whsec_..." secret. On error the
// returned Verifier is still usable and fails closed.
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &Verifier{}, ErrNoSecret
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return &Verifier{}, fmt.Errorf("parse webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify returns the delivery timestamp on success. Every failure wraps
// ErrVerification.
func (v *Verifier) Verify(body []byte, h http.Header) (time.Time, error) {
	if v == nil || v.wh == nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrVerification, ErrNoSecret)
	}
	if err := v.wh.Verify(body, h); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	sec, err := strconv.ParseInt(h.Get("svix-timestamp"), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad svix-timestamp", ErrVerification)
	}
	return time.Unix(sec, 0), nil
}
