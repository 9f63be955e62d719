// internal/app/features/communities/routes.go
package communities

import (
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts community pages under "/community".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireOnboarded)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)
	return r
}
