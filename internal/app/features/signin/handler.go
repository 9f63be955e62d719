// internal/app/features/signin/handler.go
package signin

import (
	"strings"

	uierrors "github.com/dalemusser/threads/internal/app/features/errors"
	"github.com/dalemusser/threads/internal/app/store/oauthstate"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Config describes the OAuth2 identity provider. Users are created from its
// userinfo response on first sign-in.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	BaseURL      string // e.g. "https://threads.example.com"
}

// Handler handles identity-provider sign-in and sign-out.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	StateStore *oauthstate.Store

	OAuth       *oauth2.Config
	UserInfoURL string
}

// NewHandler creates a new sign-in handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, cfg Config, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		StateStore: oauthstate.New(db),
		OAuth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  strings.TrimRight(cfg.BaseURL, "/") + "/sign-in/callback",
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		UserInfoURL: cfg.UserInfoURL,
	}
}

// IsConfigured reports whether the identity provider settings are present.
func (h *Handler) IsConfigured() bool {
	return h.OAuth.ClientID != "" && h.OAuth.Endpoint.AuthURL != "" &&
		h.OAuth.Endpoint.TokenURL != "" && h.UserInfoURL != ""
}
