// internal/app/features/threads/actions.go
package threads

import (
	"context"
	"errors"
	"net/http"

	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/authz"
	"github.com/dalemusser/threads/internal/app/system/navigation"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleLike toggles the current user's like and returns to the page the
// form was posted from.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	liked, count, err := threadstore.New(h.DB).ToggleLike(ctx, id, uid)
	if errors.Is(err, threadstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "like missing thread", "Thread not found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "toggle like failed", err, "Could not update your like.", "/")
		return
	}

	h.Log.Debug("like toggled",
		zap.String("thread_id", id.Hex()),
		zap.Bool("liked", liked),
		zap.Int("likes", count))
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.ThreadActionBackURL), http.StatusSeeOther)
}

// HandleDelete removes a thread and its replies. Only the author may delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	store := threadstore.New(h.DB)

	card, err := store.GetByID(ctx, id)
	if errors.Is(err, threadstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "delete missing thread", "Thread not found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load thread failed", err, "Could not delete this thread.", "/")
		return
	}
	if !authz.IsAuthor(r, card.Author) {
		h.ErrLog.LogForbidden(w, r, "delete by non-author", "You can only delete your own threads.", "/thread/"+id.Hex())
		return
	}

	n, err := store.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete thread failed", err, "Could not delete this thread.", "/thread/"+id.Hex())
		return
	}
	h.Log.Info("thread deleted", zap.String("thread_id", id.Hex()), zap.Int64("removed", n))

	// A deleted reply returns to its parent; otherwise to the page it was deleted from.
	dest := navigation.SafeBackURL(r, navigation.ThreadActionBackURL.WithExcludedID(id.Hex()))
	if card.Parent != nil && dest == navigation.ThreadActionBackURL.Fallback {
		dest = "/thread/" + card.Parent.Hex()
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
