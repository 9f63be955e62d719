package bootstrap

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "threads",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		WebhookSecret:    "whsec_" + base64.StdEncoding.EncodeToString([]byte("secret")),
		WebhookRateLimit: 120,
		RequestTimeout:   30 * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	core := &config.CoreConfig{}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid"},
		{name: "missing webhook secret only warns", mutate: func(c *AppConfig) { c.WebhookSecret = "" }},
		{name: "missing mongo uri only warns", mutate: func(c *AppConfig) { c.MongoURI = "" }},
		{name: "bad uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://nope" }, wantErr: "invalid MongoDB URI"},
		{name: "empty database", mutate: func(c *AppConfig) { c.MongoDatabase = "" }, wantErr: "mongo_database"},
		{name: "pool sizes inverted", mutate: func(c *AppConfig) { c.MongoMinPoolSize = 200 }, wantErr: "exceeds"},
		{name: "negative rate limit", mutate: func(c *AppConfig) { c.WebhookRateLimit = -1 }, wantErr: "webhook_rate_limit"},
		{name: "zero request timeout", mutate: func(c *AppConfig) { c.RequestTimeout = 0 }, wantErr: "request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := ValidateConfig(core, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateConfig() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGeneratedSessionKey(t *testing.T) {
	a, b := generatedSessionKey(), generatedSessionKey()
	if len(a) < 32 {
		t.Errorf("key length = %d, want >= 32", len(a))
	}
	if a == b {
		t.Error("generated keys repeat")
	}
}

func TestAppConfigKeys_Names(t *testing.T) {
	want := []string{
		"mongo_uri", "mongo_database", "mongo_max_pool_size", "mongo_min_pool_size",
		"webhook_secret", "webhook_rate_limit",
		"session_key", "session_name", "session_domain",
		"idp_client_id", "idp_client_secret", "idp_auth_url", "idp_token_url", "idp_userinfo_url",
		"base_url", "request_timeout",
	}
	have := map[string]bool{}
	for _, k := range appConfigKeys {
		if have[k.Name] {
			t.Errorf("duplicate key %q", k.Name)
		}
		have[k.Name] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing config key %q", name)
		}
	}
}
