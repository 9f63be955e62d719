// internal/app/features/threads/detail.go
package threads

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/threads/internal/app/features/shared"
	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/threads/internal/app/system/authz"
	"github.com/dalemusser/threads/internal/app/system/formutil"
	"github.com/dalemusser/threads/internal/app/system/htmlsanitize"
	"github.com/dalemusser/threads/internal/app/system/inputval"
	"github.com/dalemusser/threads/internal/app/system/limits"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeDetail renders a thread, its reply form, and its replies.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}
	h.renderDetail(w, r, id, "", "")
}

// HandleReply posts a reply under the thread in the URL.
func (h *Handler) HandleReply(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}
	limits.LimitForm(w, r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/thread/"+id.Hex())
		return
	}

	raw := r.FormValue("text")
	text := htmlsanitize.Sanitize(raw)
	if res := inputval.Validate(replyInput{Text: text}); res.HasErrors() {
		h.renderDetail(w, r, id, raw, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reply, err := threadstore.New(h.DB).AddReply(ctx, id, threadstore.NewThread{Author: uid, Text: text})
	switch {
	case errors.Is(err, threadstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "reply to missing thread", "Thread not found.", "/")
		return
	case errors.Is(err, threadstore.ErrEmptyText):
		h.renderDetail(w, r, id, raw, "Reply cannot be empty.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "add reply failed", err, "Could not post your reply.", "/thread/"+id.Hex())
		return
	}

	h.Log.Info("reply posted",
		zap.String("thread_id", id.Hex()),
		zap.String("reply_id", reply.ID.Hex()))
	http.Redirect(w, r, "/thread/"+id.Hex(), http.StatusSeeOther)
}

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, replyText, errMsg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	card, err := threadstore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, threadstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "thread not found", "Thread not found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load thread failed", err, "Could not load this thread.", "/")
		return
	}

	data := detailData{
		Thread:    shared.NewThreadCard(r, card, shared.CardOptions{DisableTextLink: true}),
		Replies:   shared.NewThreadCards(r, card.Replies, shared.CardOptions{IsReply: true}),
		ReplyText: replyText,
	}
	if u, ok := auth.CurrentUser(r); ok {
		data.UserImage = u.Image
	}
	formutil.SetBase(&data.Base, r, "Thread", "/")
	if errMsg != "" {
		data.SetError(errMsg)
	}

	templates.Render(w, r, "thread_detail", data)
}

// threadID parses {id}; an unparseable id is a 404 like a missing thread.
func (h *Handler) threadID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "bad thread id", "Thread not found.", "/")
		return primitive.NilObjectID, false
	}
	return id, true
}
