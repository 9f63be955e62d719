// internal/app/features/activity/activity.go
package activity

import (
	"context"
	"net/http"

	"github.com/dalemusser/threads/internal/app/features/shared"
	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// activityRow is one "X replied to your thread" line.
type activityRow struct {
	AuthorName  string
	AuthorImage string
	ParentID    string
	When        string
}

type activityData struct {
	viewdata.BaseVM
	Items []activityRow
}

// ServeActivity handles GET /activity.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}
	uid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad session user id", err, "Your session is invalid. Please sign in again.", "/sign-in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := threadstore.New(h.DB).Activity(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load activity failed", err, "Unable to load activity.", "/")
		return
	}

	data := activityData{BaseVM: viewdata.NewBaseVM(r, "Activity", "/")}
	for _, it := range items {
		row := activityRow{
			AuthorName:  it.Author.Name,
			AuthorImage: it.Author.Image,
			When:        shared.FormatDate(it.Reply.CreatedAt),
		}
		if it.Reply.Parent != nil {
			row.ParentID = it.Reply.Parent.Hex()
		}
		data.Items = append(data.Items, row)
	}

	templates.Render(w, r, "activity_list", data)
}
