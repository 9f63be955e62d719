package shared_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/threads/internal/app/features/shared"
	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/threads/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReplyLabel(t *testing.T) {
	tests := map[int]string{0: "0 replies", 1: "1 reply", 2: "2 replies", 12: "12 replies"}
	for n, want := range tests {
		if got := shared.ReplyLabel(n); got != want {
			t.Errorf("ReplyLabel(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 15, 4, 0, 0, time.UTC)
	if got := shared.FormatDate(ts); got != "3:04 PM - Mar 5, 2024" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := shared.FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q, want empty", got)
	}
}

func card(author primitive.ObjectID, likes ...primitive.ObjectID) threadstore.Card {
	return threadstore.Card{
		Thread: models.Thread{
			ID:        primitive.NewObjectID(),
			Author:    author,
			Text:      "hello\nworld",
			Likes:     likes,
			Children:  []primitive.ObjectID{primitive.NewObjectID()},
			CreatedAt: time.Now(),
		},
		Replies: []threadstore.Card{
			{AuthorUser: models.User{Image: "a.png"}},
		},
	}
}

func TestNewThreadCard_Visitor(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	tc := shared.NewThreadCard(req, card(primitive.NewObjectID()), shared.CardOptions{})

	if tc.SignedIn || tc.CanDelete || tc.Liked {
		t.Errorf("visitor card should have no actions: %+v", tc)
	}
	if tc.ReplyLabel != "1 reply" {
		t.Errorf("ReplyLabel = %q", tc.ReplyLabel)
	}
	if len(tc.ReplyImages) != 1 || tc.ReplyImages[0] != "a.png" {
		t.Errorf("ReplyImages = %v", tc.ReplyImages)
	}
	if string(tc.Body) != "hello<br>world" {
		t.Errorf("Body = %q", tc.Body)
	}
}

func TestNewThreadCard_AuthorWhoLiked(t *testing.T) {
	me := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: me.Hex(), Name: "Me", Onboarded: true})

	tc := shared.NewThreadCard(req, card(me, me), shared.CardOptions{IsReply: true})

	if !tc.SignedIn || !tc.CanDelete || !tc.Liked {
		t.Errorf("author card flags wrong: %+v", tc)
	}
	if tc.LikeCount != 1 {
		t.Errorf("LikeCount = %d, want 1", tc.LikeCount)
	}
	if !tc.IsReply {
		t.Error("IsReply not carried")
	}
}

func TestNewThreadCard_OtherUserCannotDelete(t *testing.T) {
	me := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: me.Hex()})

	tc := shared.NewThreadCard(req, card(primitive.NewObjectID()), shared.CardOptions{})

	if tc.CanDelete || tc.Liked {
		t.Errorf("flags wrong for non-author: %+v", tc)
	}
}
