// internal/app/features/communities/view.go
package communities

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/threads/internal/app/features/shared"
	communitystore "github.com/dalemusser/threads/internal/app/store/communities"
	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/threads/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// ServeView renders a community's header and the selected tab (?tab=).
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := communitystore.New(h.DB)
	c, err := store.GetByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, communitystore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "community not found", "Community not found.", "/community")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load community failed", err, "Unable to load community.", "/community")
		return
	}

	tab := models.TabOrDefault(models.CommunityTabs, query.Get(r, "tab"))
	data := viewData{
		BaseVM:    viewdata.NewBaseVM(r, c.Name, "/community"),
		Community: c,
		Tab:       tab,
	}

	cards, err := threadstore.New(h.DB).ListByCommunity(ctx, c.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list community threads failed", err, "Unable to load community threads.", "/community")
		return
	}

	switch tab {
	case models.CommunityTabThreads:
		data.Threads = shared.NewThreadCards(r, cards, shared.CardOptions{})
	case models.CommunityTabMembers:
		members, err := store.Members(ctx, c)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list members failed", err, "Unable to load members.", "/community")
			return
		}
		data.Members = members
	}
	data.Tabs = buildTabs(tab, len(cards), len(c.Members))

	templates.Render(w, r, "community_view", data)
}
