package webhook

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// Routes mounts the identity-provider webhook. perMinute <= 0 disables the
// per-IP limit. The route sits outside session middleware.
func Routes(h *Handler, perMinute int) chi.Router {
	r := chi.NewRouter()
	if perMinute > 0 {
		r.Use(httprate.LimitByIP(perMinute, time.Minute))
	}
	r.Post("/clerk", h.ServeClerk)
	return r
}
