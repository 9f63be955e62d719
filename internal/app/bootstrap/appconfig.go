// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is where everything specific to Threads lives. The struct is
// passed to most lifecycle hooks, so any configuration needed during
// startup, request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Webhook signing secret issued by the identity provider ("whsec_...").
	// Empty means every webhook delivery is rejected.
	WebhookSecret string
	// Requests per minute per client IP on the webhook route; 0 disables.
	WebhookRateLimit int

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: threads-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// OAuth2 identity provider used for sign-in
	IdPClientID     string
	IdPClientSecret string
	IdPAuthURL      string
	IdPTokenURL     string
	IdPUserInfoURL  string

	// Base URL used to build the OAuth callback (e.g., "https://threads.example.com")
	BaseURL string

	// Per-request deadline applied by the router
	RequestTimeout time.Duration
}
