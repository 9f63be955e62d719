// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// envPrefix scopes app settings: THREADS_MONGO_URI, THREADS_WEBHOOK_SECRET, etc.
const envPrefix = "THREADS"

// appConfigKeys defines the configuration keys for Threads.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: THREADS_MONGO_URI, THREADS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "threads", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Webhook
	{Name: "webhook_secret", Default: "", Desc: "Svix signing secret for the identity provider webhook (whsec_...)"},
	{Name: "webhook_rate_limit", Default: 120, Desc: "Webhook requests per minute per client IP (0 disables)"},

	// Sessions
	{Name: "session_key", Default: "", Desc: "Session signing key (must be strong in production; blank generates a per-process key)"},
	{Name: "session_name", Default: "threads-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Identity provider (OAuth2)
	{Name: "idp_client_id", Default: "", Desc: "OAuth2 client ID"},
	{Name: "idp_client_secret", Default: "", Desc: "OAuth2 client secret"},
	{Name: "idp_auth_url", Default: "", Desc: "OAuth2 authorization endpoint"},
	{Name: "idp_token_url", Default: "", Desc: "OAuth2 token endpoint"},
	{Name: "idp_userinfo_url", Default: "", Desc: "OAuth2 userinfo endpoint"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL used for the OAuth callback"},
	{Name: "request_timeout", Default: "30s", Desc: "Per-request deadline (e.g., 30s, 1m)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, THREADS_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, envPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		WebhookSecret:    appValues.String("webhook_secret"),
		WebhookRateLimit: appValues.Int("webhook_rate_limit"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		IdPClientID:     appValues.String("idp_client_id"),
		IdPClientSecret: appValues.String("idp_client_secret"),
		IdPAuthURL:      appValues.String("idp_auth_url"),
		IdPTokenURL:     appValues.String("idp_token_url"),
		IdPUserInfoURL:  appValues.String("idp_userinfo_url"),

		BaseURL:        appValues.String("base_url"),
		RequestTimeout: appValues.Duration("request_timeout", 30*time.Second),
	}

	if appCfg.SessionKey == "" {
		appCfg.SessionKey = generatedSessionKey()
		logger.Warn("session_key not set; generated a per-process key (sessions will not survive restarts)")
	}

	return coreCfg, appCfg, nil
}

// generatedSessionKey returns 64 random bytes encoded for use as a cookie key.
func generatedSessionKey() string {
	return base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(64))
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// A malformed MongoDB URI aborts startup. A missing URI or webhook secret
// only warns: the app then answers 503 on database-backed routes, and the
// webhook rejects every delivery.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.MongoURI == "" {
		logger.Warn("mongo_uri not set; running without a database")
	} else if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.WebhookRateLimit < 0 {
		return fmt.Errorf("webhook_rate_limit must be >= 0")
	}
	if appCfg.WebhookSecret == "" {
		logger.Warn("webhook_secret not set; identity provider webhooks will be rejected")
	}
	if appCfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}
