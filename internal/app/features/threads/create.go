// internal/app/features/threads/create.go
package threads

import (
	"context"
	"net/http"
	"strings"

	communitystore "github.com/dalemusser/threads/internal/app/store/communities"
	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/authz"
	"github.com/dalemusser/threads/internal/app/system/formutil"
	"github.com/dalemusser/threads/internal/app/system/htmlsanitize"
	"github.com/dalemusser/threads/internal/app/system/inputval"
	"github.com/dalemusser/threads/internal/app/system/limits"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeNew renders the new-thread form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderNew(w, r, "", "", "")
}

// HandleCreate posts a root thread, optionally into one of the author's communities.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}
	limits.LimitForm(w, r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/create-thread")
		return
	}

	raw := r.FormValue("text")
	communityHex := strings.TrimSpace(r.FormValue("community"))
	text := htmlsanitize.Sanitize(raw)
	if res := inputval.Validate(threadInput{Text: text}); res.HasErrors() {
		h.renderNew(w, r, raw, communityHex, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var community *primitive.ObjectID
	if communityHex != "" {
		cid, err := primitive.ObjectIDFromHex(communityHex)
		if err != nil {
			h.renderNew(w, r, raw, "", "Please choose one of your communities.")
			return
		}
		c, err := communitystore.New(h.DB).GetByObjectID(ctx, cid)
		if err != nil || !c.HasMember(uid) {
			h.renderNew(w, r, raw, "", "Please choose one of your communities.")
			return
		}
		community = &c.ID
	}

	th, err := threadstore.New(h.DB).Create(ctx, threadstore.NewThread{Author: uid, Text: text, Community: community})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create thread failed", err, "Could not post your thread.", "/create-thread")
		return
	}

	h.Log.Info("thread created", zap.String("thread_id", th.ID.Hex()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) renderNew(w http.ResponseWriter, r *http.Request, text, community, errMsg string) {
	var mine []models.Community
	if _, uid, ok := authz.UserCtx(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		cs, err := communitystore.New(h.DB).ListForUser(ctx, uid)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list user communities failed", err, "Could not load your communities.", "/")
			return
		}
		mine = cs
	}

	data := newData{Text: text, Communities: communityOptions(mine, community)}
	formutil.SetBase(&data.Base, r, "Create Thread", "/")
	if errMsg != "" {
		data.SetError(errMsg)
	}
	templates.Render(w, r, "thread_new", data)
}
