package home

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/threads/internal/app/features/errors"
	"github.com/dalemusser/threads/internal/app/features/shared"
	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/paging"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home feed.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
	}
}

type feedData struct {
	viewdata.BaseVM

	Threads  []shared.ThreadCard
	Page     int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – root threads, newest first                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.ParsePage(r)
	feed, err := threadstore.New(h.DB).ListRoots(ctx, page, paging.FeedPageSize)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list feed failed", err, "Could not load threads.", "/")
		return
	}

	data := feedData{
		BaseVM:   viewdata.NewBaseVM(r, "Home", "/"),
		Threads:  shared.NewThreadCards(r, feed.Cards, shared.CardOptions{}),
		Page:     feed.Page,
		HasPrev:  feed.Page > 1,
		HasNext:  feed.HasNext,
		PrevPage: feed.Page - 1,
		NextPage: feed.Page + 1,
	}

	templates.Render(w, r, "home_feed", data)
}
