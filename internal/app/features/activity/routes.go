// internal/app/features/activity/routes.go
package activity

import (
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the activity page.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireOnboarded)

	r.Get("/", h.ServeActivity)
	return r
}
