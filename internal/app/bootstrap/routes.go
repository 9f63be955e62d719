// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	activityfeature "github.com/dalemusser/threads/internal/app/features/activity"
	communitiesfeature "github.com/dalemusser/threads/internal/app/features/communities"
	errorsfeature "github.com/dalemusser/threads/internal/app/features/errors"
	healthfeature "github.com/dalemusser/threads/internal/app/features/health"
	homefeature "github.com/dalemusser/threads/internal/app/features/home"
	profilefeature "github.com/dalemusser/threads/internal/app/features/profile"
	searchfeature "github.com/dalemusser/threads/internal/app/features/search"
	signinfeature "github.com/dalemusser/threads/internal/app/features/signin"
	threadsfeature "github.com/dalemusser/threads/internal/app/features/threads"
	webhookfeature "github.com/dalemusser/threads/internal/app/features/webhook"
	userstore "github.com/dalemusser/threads/internal/app/store/users"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The identity-provider webhook is mounted before the session middleware:
// it authenticates by signature and never touches cookies.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	verifier, err := webhookfeature.NewVerifier(appCfg.WebhookSecret)
	switch {
	case errors.Is(err, webhookfeature.ErrNoSecret):
		logger.Warn("webhook secret missing; all webhook deliveries will be rejected")
	case err != nil:
		logger.Error("webhook secret invalid", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(appCfg.RequestTimeout))
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Machine endpoints
	healthHandler := healthfeature.NewHandler(deps.Mongo, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Everything below needs the database. Until a connect succeeds these
	// routes answer 503 and retry the connect on the next request.
	r.Mount("/api/webhook", deps.Mongo.Defer(func(db *mongo.Database) http.Handler {
		webhookHandler := webhookfeature.NewHandler(db, verifier, logger)
		return webhookfeature.Routes(webhookHandler, appCfg.WebhookRateLimit)
	}, http.HandlerFunc(webhookfeature.ServeUnavailable)))

	r.Mount("/", deps.Mongo.Defer(func(db *mongo.Database) http.Handler {
		return pageRoutes(db, appCfg, sessionMgr, errLog, errorsHandler, logger)
	}, http.HandlerFunc(errorsHandler.Unavailable)))

	return r, nil
}

// pageRoutes builds the browser pages, which share the session.
func pageRoutes(db *mongo.Database, appCfg AppConfig, sessionMgr *auth.SessionManager, errLog *errorsfeature.ErrorLogger, errorsHandler *errorsfeature.Handler, logger *zap.Logger) http.Handler {
	// LoadSessionUser fetches fresh user data on each request so onboarding
	// and profile edits take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	pr := chi.NewRouter()
	pr.NotFound(errorsHandler.NotFound)
	pr.MethodNotAllowed(errorsHandler.MethodNotAllowed)
	pr.Use(sessionMgr.LoadSessionUser)

	signinHandler := signinfeature.NewHandler(db, sessionMgr, errLog, signinfeature.Config{
		ClientID:     appCfg.IdPClientID,
		ClientSecret: appCfg.IdPClientSecret,
		AuthURL:      appCfg.IdPAuthURL,
		TokenURL:     appCfg.IdPTokenURL,
		UserInfoURL:  appCfg.IdPUserInfoURL,
		BaseURL:      appCfg.BaseURL,
	}, logger)
	pr.Mount("/sign-in", signinfeature.Routes(signinHandler))
	pr.Mount("/sign-out", signinfeature.SignOutRoutes(signinHandler))

	homeHandler := homefeature.NewHandler(db, errLog, logger)
	pr.Mount("/", homefeature.Routes(homeHandler))

	threadsHandler := threadsfeature.NewHandler(db, errLog, logger)
	pr.Mount("/thread", threadsfeature.Routes(threadsHandler, sessionMgr))
	pr.Mount("/create-thread", threadsfeature.CreateRoutes(threadsHandler, sessionMgr))

	communitiesHandler := communitiesfeature.NewHandler(db, errLog, logger)
	pr.Mount("/community", communitiesfeature.Routes(communitiesHandler, sessionMgr))

	profileHandler := profilefeature.NewHandler(db, errLog, logger)
	pr.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))
	pr.Mount("/onboarding", profilefeature.OnboardingRoutes(profileHandler, sessionMgr))

	searchHandler := searchfeature.NewHandler(db, errLog, logger)
	pr.Mount("/search", searchfeature.Routes(searchHandler))

	activityHandler := activityfeature.NewHandler(db, errLog, logger)
	pr.Mount("/activity", activityfeature.Routes(activityHandler, sessionMgr))

	return pr
}
