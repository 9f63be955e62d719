// internal/app/system/limits/limits.go
package limits

import "net/http"

// Request body size limits. These prevent memory exhaustion from oversized
// requests.
const (
	// MaxWebhookBodySize caps a webhook delivery read before verification.
	MaxWebhookBodySize = 1 << 20 // 1 MB

	// MaxFormSize caps urlencoded form posts (threads, replies, onboarding).
	MaxFormSize = 64 << 10 // 64 KB
)

// LimitForm wraps r.Body so ParseForm fails once MaxFormSize is exceeded.
func LimitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
}
