package threadstore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	threadstore "github.com/dalemusser/threads/internal/app/store/threads"
	"github.com/dalemusser/threads/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "user_1", "Ada")
	th, err := store.Create(ctx, threadstore.NewThread{Author: u.ID, Text: "  hello world  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if th.Text != "hello world" || th.IsReply() || th.CreatedAt.IsZero() {
		t.Errorf("unexpected thread: %+v", th)
	}

	if _, err := store.Create(ctx, threadstore.NewThread{Author: u.ID, Text: "   "}); !errors.Is(err, threadstore.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestStore_AddReply_And_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ada := fx.CreateUser(ctx, "user_a", "Ada")
	bob := fx.CreateUser(ctx, "user_b", "Bob")
	c := fx.CreateCommunity(ctx, "org_1", "Acme")

	root, err := store.Create(ctx, threadstore.NewThread{Author: ada.ID, Text: "root", Community: &c.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	r1, err := store.AddReply(ctx, root.ID, threadstore.NewThread{Author: bob.ID, Text: "first"})
	if err != nil {
		t.Fatalf("AddReply failed: %v", err)
	}
	if _, err := store.AddReply(ctx, root.ID, threadstore.NewThread{Author: bob.ID, Text: "second"}); err != nil {
		t.Fatalf("AddReply failed: %v", err)
	}
	if _, err := store.AddReply(ctx, r1.ID, threadstore.NewThread{Author: ada.ID, Text: "nested"}); err != nil {
		t.Fatalf("nested AddReply failed: %v", err)
	}
	if r1.Community == nil || *r1.Community != c.ID {
		t.Error("expected reply to inherit parent community")
	}

	card, err := store.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if card.AuthorUser.Name != "Ada" {
		t.Errorf("expected author Ada, got %q", card.AuthorUser.Name)
	}
	if card.CommunityInfo == nil || card.CommunityInfo.Name != "Acme" {
		t.Errorf("expected community Acme, got %+v", card.CommunityInfo)
	}
	if card.ReplyCount() != 2 || len(card.Replies) != 2 {
		t.Fatalf("expected 2 replies, got %d/%d", card.ReplyCount(), len(card.Replies))
	}
	if card.Replies[0].Text != "first" || card.Replies[1].Text != "second" {
		t.Errorf("replies out of order: %q, %q", card.Replies[0].Text, card.Replies[1].Text)
	}
	if got := card.ReplyImages(); len(got) != 1 || got[0] != bob.Image {
		t.Errorf("expected one distinct reply image, got %v", got)
	}
	if len(card.Replies[0].Replies) != 1 || card.Replies[0].Replies[0].AuthorUser.Name != "Ada" {
		t.Errorf("expected nested reply populated, got %+v", card.Replies[0].Replies)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.AddReply(ctx, primitive.NewObjectID(), threadstore.NewThread{Author: ada.ID, Text: "x"}); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestStore_ListRoots_Paging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "user_1", "Ada")
	var last primitive.ObjectID
	for i := 0; i < 5; i++ {
		th, err := store.Create(ctx, threadstore.NewThread{Author: u.ID, Text: fmt.Sprintf("post %d", i)})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		last = th.ID
		time.Sleep(2 * time.Millisecond)
	}
	if _, err := store.AddReply(ctx, last, threadstore.NewThread{Author: u.ID, Text: "reply"}); err != nil {
		t.Fatalf("AddReply failed: %v", err)
	}

	p1, err := store.ListRoots(ctx, 1, 3)
	if err != nil {
		t.Fatalf("ListRoots failed: %v", err)
	}
	if len(p1.Cards) != 3 || !p1.HasNext {
		t.Fatalf("expected 3 with next, got %d next=%v", len(p1.Cards), p1.HasNext)
	}
	if p1.Cards[0].ID != last {
		t.Error("expected newest thread first")
	}
	if len(p1.Cards[0].Replies) != 1 {
		t.Errorf("expected feed card to carry its reply, got %d", len(p1.Cards[0].Replies))
	}

	p2, err := store.ListRoots(ctx, 2, 3)
	if err != nil {
		t.Fatalf("ListRoots page 2 failed: %v", err)
	}
	if len(p2.Cards) != 2 || p2.HasNext {
		t.Errorf("expected 2 roots and no next, got %d next=%v", len(p2.Cards), p2.HasNext)
	}
}

func TestStore_ListByAuthorAndCommunity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ada := fx.CreateUser(ctx, "user_a", "Ada")
	bob := fx.CreateUser(ctx, "user_b", "Bob")
	c := fx.CreateCommunity(ctx, "org_1", "Acme")

	root := fx.CreateThread(ctx, ada.ID, "ada root", &c.ID)
	fx.CreateThread(ctx, ada.ID, "ada solo", nil)
	fx.CreateReply(ctx, root, bob.ID, "bob reply")

	roots, err := store.ListByAuthor(ctx, ada.ID, false)
	if err != nil || len(roots) != 2 {
		t.Fatalf("expected 2 roots for Ada, got %d (%v)", len(roots), err)
	}
	replies, err := store.ListByAuthor(ctx, bob.ID, true)
	if err != nil || len(replies) != 1 || replies[0].Text != "bob reply" {
		t.Fatalf("expected Bob's reply, got %+v (%v)", replies, err)
	}
	bobRoots, _ := store.ListByAuthor(ctx, bob.ID, false)
	if len(bobRoots) != 0 {
		t.Errorf("Bob has no root threads, got %d", len(bobRoots))
	}

	inCommunity, err := store.ListByCommunity(ctx, c.ID)
	if err != nil || len(inCommunity) != 1 || inCommunity[0].ID != root.ID {
		t.Errorf("expected only the community root, got %+v (%v)", inCommunity, err)
	}
}

func TestStore_ToggleLike(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "user_1", "Ada")
	other := fx.CreateUser(ctx, "user_2", "Bob")
	th := fx.CreateThread(ctx, u.ID, "like me", nil)

	liked, n, err := store.ToggleLike(ctx, th.ID, other.ID)
	if err != nil || !liked || n != 1 {
		t.Fatalf("first toggle: liked=%v n=%d err=%v", liked, n, err)
	}
	liked, n, err = store.ToggleLike(ctx, th.ID, u.ID)
	if err != nil || !liked || n != 2 {
		t.Fatalf("second liker: liked=%v n=%d err=%v", liked, n, err)
	}
	liked, n, err = store.ToggleLike(ctx, th.ID, other.ID)
	if err != nil || liked || n != 1 {
		t.Fatalf("unlike: liked=%v n=%d err=%v", liked, n, err)
	}

	if _, _, err := store.ToggleLike(ctx, primitive.NewObjectID(), u.ID); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "user_1", "Ada")
	root := fx.CreateThread(ctx, u.ID, "root", nil)
	mid := fx.CreateReply(ctx, root, u.ID, "mid")
	fx.CreateReply(ctx, mid, u.ID, "leaf")
	sibling := fx.CreateReply(ctx, root, u.ID, "sibling")

	n, err := store.Delete(ctx, mid.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected mid and leaf removed, got %d", n)
	}

	card, err := store.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(card.Children) != 1 || card.Children[0] != sibling.ID {
		t.Errorf("expected only sibling to remain linked, got %v", card.Children)
	}

	n, err = store.Delete(ctx, root.ID)
	if err != nil || n != 2 {
		t.Errorf("expected root and sibling removed, got %d (%v)", n, err)
	}
	left, _ := db.Collection("threads").CountDocuments(ctx, bson.M{})
	if left != 0 {
		t.Errorf("expected no threads left, got %d", left)
	}

	if _, err := store.Delete(ctx, root.ID); !errors.Is(err, threadstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestStore_Activity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := threadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ada := fx.CreateUser(ctx, "user_a", "Ada")
	bob := fx.CreateUser(ctx, "user_b", "Bob")
	root := fx.CreateThread(ctx, ada.ID, "ada's", nil)
	fx.CreateReply(ctx, root, ada.ID, "self reply")
	fx.CreateReply(ctx, root, bob.ID, "bob answers")

	items, err := store.Activity(ctx, ada.ID)
	if err != nil {
		t.Fatalf("Activity failed: %v", err)
	}
	if len(items) != 1 || items[0].Author.Name != "Bob" || items[0].Reply.Text != "bob answers" {
		t.Errorf("unexpected activity: %+v", items)
	}

	none, err := store.Activity(ctx, bob.ID)
	if err != nil || len(none) != 0 {
		t.Errorf("Bob has no activity, got %d (%v)", len(none), err)
	}
}
