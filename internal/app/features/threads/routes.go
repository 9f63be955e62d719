// internal/app/features/threads/routes.go
package threads

import (
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts thread pages under "/thread".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireOnboarded)

	r.Get("/{id}", h.ServeDetail)
	r.Post("/{id}/reply", h.HandleReply)
	r.Post("/{id}/like", h.HandleLike)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}

// CreateRoutes mounts the new-thread form under "/create-thread".
func CreateRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireOnboarded)

	r.Get("/", h.ServeNew)
	r.Post("/", h.HandleCreate)
	return r
}
