// Package shared builds view models used by more than one feature's templates.
package shared

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/authz"
	"github.com/dalemusser/threads/internal/app/system/htmlsanitize"
)

// ThreadCard is the data behind the "thread_card" template.
type ThreadCard struct {
	Card threadstore.Card
	Body template.HTML

	SignedIn  bool
	Liked     bool
	LikeCount int
	CanDelete bool

	IsReply         bool
	DisableTextLink bool

	CreatedLabel string
	ReplyImages  []string
	ReplyLabel   string

	// ReturnURL brings like and delete forms back to the page they were posted from.
	ReturnURL string
}

// CardOptions toggles the reply and detail-page variants of a card.
type CardOptions struct {
	IsReply         bool
	DisableTextLink bool
}

// NewThreadCard resolves per-viewer state (liked, deletable) for c.
func NewThreadCard(r *http.Request, c threadstore.Card, opt CardOptions) ThreadCard {
	_, uid, signedIn := authz.UserCtx(r)
	tc := ThreadCard{
		Card:            c,
		Body:            htmlsanitize.PrepareForDisplay(c.Text),
		SignedIn:        signedIn,
		LikeCount:       len(c.Likes),
		IsReply:         opt.IsReply,
		DisableTextLink: opt.DisableTextLink,
		CreatedLabel:    FormatDate(c.CreatedAt),
		ReplyImages:     c.ReplyImages(),
		ReplyLabel:      ReplyLabel(c.ReplyCount()),
		ReturnURL:       r.URL.RequestURI(),
	}
	if signedIn {
		tc.Liked = c.LikedBy(uid)
		tc.CanDelete = c.Author == uid
	}
	return tc
}

func NewThreadCards(r *http.Request, cards []threadstore.Card, opt CardOptions) []ThreadCard {
	out := make([]ThreadCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, NewThreadCard(r, c, opt))
	}
	return out
}

// ReplyLabel renders "1 reply" or "N replies".
func ReplyLabel(n int) string {
	if n == 1 {
		return "1 reply"
	}
	return strconv.Itoa(n) + " replies"
}

// FormatDate renders t like "3:04 PM - Jan 2, 2006" in UTC.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("3:04 PM - Jan 2, 2006")
}
