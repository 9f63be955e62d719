// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/threads/internal/app/features/shared"
	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	userstore "github.com/dalemusser/threads/internal/app/store/users"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/threads/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

type tabItem struct {
	models.Tab
	Active bool
	Count  int
}

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	User   models.User
	IsSelf bool
	Tabs   []tabItem
	Tab    string

	Threads []shared.ThreadCard
}

// ServeSelf renders the signed-in user's own profile.
func (h *Handler) ServeSelf(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}
	h.renderProfile(w, r, u.AuthID)
}

// ServeProfile renders the profile of the identity-provider user in {id}.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, authID string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).GetByAuthID(ctx, authID)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "profile not found", "User not found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "Unable to load profile.", "/")
		return
	}

	tab := models.TabOrDefault(models.ProfileTabs, query.Get(r, "tab"))
	store := threadstore.New(h.DB)

	roots, err := store.ListByAuthor(ctx, user.ID, false)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list user threads failed", err, "Unable to load threads.", "/")
		return
	}
	replies, err := store.ListByAuthor(ctx, user.ID, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list user replies failed", err, "Unable to load replies.", "/")
		return
	}

	self, _ := auth.CurrentUser(r)
	data := profileData{
		BaseVM: viewdata.NewBaseVM(r, user.Name, "/"),
		User:   *user,
		IsSelf: self != nil && self.AuthID == user.AuthID,
		Tab:    tab,
	}
	switch tab {
	case models.ProfileTabThreads:
		data.Threads = shared.NewThreadCards(r, roots, shared.CardOptions{})
	case models.ProfileTabReplies:
		data.Threads = shared.NewThreadCards(r, replies, shared.CardOptions{})
	}
	for _, t := range models.ProfileTabs {
		ti := tabItem{Tab: t, Active: t.Value == tab}
		switch t.Value {
		case models.ProfileTabThreads:
			ti.Count = len(roots)
		case models.ProfileTabReplies:
			ti.Count = len(replies)
		}
		data.Tabs = append(data.Tabs, ti)
	}

	templates.Render(w, r, "profile_view", data)
}
