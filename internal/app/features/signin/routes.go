// internal/app/features/signin/routes.go
package signin

import "github.com/go-chi/chi/v5"

// Routes mounts the OAuth flow under "/sign-in".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSignIn)
	r.Get("/callback", h.ServeCallback)
	return r
}

// SignOutRoutes mounts the sign-out form target under "/sign-out".
func SignOutRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeSignOut)
	return r
}
