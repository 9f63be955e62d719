// internal/app/features/search/handler.go
package search

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/threads/internal/app/features/errors"
	userstore "github.com/dalemusser/threads/internal/app/store/users"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/threads/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

type searchData struct {
	viewdata.BaseVM

	Q     string
	Users []models.User

	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// ServeSearch handles GET /search?q=. The signed-in user is left out of
// the results.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")

	opts := userstore.SearchOptions{
		Query:  q,
		After:  query.Get(r, "after"),
		Before: query.Get(r, "before"),
	}
	if u, ok := auth.CurrentUser(r); ok {
		opts.ExcludeAuthID = u.AuthID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := userstore.New(h.DB).Search(ctx, opts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "search users failed", err, "Unable to search users.", "/")
		return
	}

	templates.Render(w, r, "search_users", searchData{
		BaseVM:     viewdata.NewBaseVM(r, "Search", "/"),
		Q:          q,
		Users:      page.Users,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: page.PrevCursor,
		NextCursor: page.NextCursor,
	})
}
