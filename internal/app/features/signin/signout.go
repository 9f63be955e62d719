// internal/app/features/signin/signout.go
package signin

import (
	"net/http"

	"go.uber.org/zap"
)

// ServeSignOut handles POST /sign-out.
func (h *Handler) ServeSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("sign-out: save session", zap.Error(err))
	}

	// HTMX: force a client-side navigation to "/".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
