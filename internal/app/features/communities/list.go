// internal/app/features/communities/list.go
package communities

import (
	"context"
	"net/http"

	communitystore "github.com/dalemusser/threads/internal/app/store/communities"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeList handles GET /community (with optional ?q= search and keyset
// cursors ?after= / ?before=).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := communitystore.New(h.DB).List(ctx, communitystore.ListOptions{
		Query:  q,
		After:  query.Get(r, "after"),
		Before: query.Get(r, "before"),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list communities failed", err, "Unable to load communities.", "/")
		return
	}

	data := listData{
		BaseVM:      viewdata.NewBaseVM(r, "Communities", "/"),
		Q:           q,
		Communities: page.Communities,
		HasPrev:     page.HasPrev,
		HasNext:     page.HasNext,
		PrevCursor:  page.PrevCursor,
		NextCursor:  page.NextCursor,
	}

	templates.Render(w, r, "community_list", data)
}
