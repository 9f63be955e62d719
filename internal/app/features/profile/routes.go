// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts profile pages under "/profile".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireOnboarded)

	r.Get("/", h.ServeSelf)
	r.Get("/{id}", h.ServeProfile)
	return r
}

// OnboardingRoutes mounts the onboarding form under "/onboarding". It only
// requires a signed-in user; RequireOnboarded sends people here.
func OnboardingRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeOnboarding)
	r.Post("/", h.HandleOnboarding)
	return r
}
