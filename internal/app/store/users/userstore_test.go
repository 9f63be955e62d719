package userstore_test

import (
	"errors"
	"fmt"
	"testing"

	userstore "github.com/dalemusser/threads/internal/app/store/users"
	"github.com/dalemusser/threads/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_GetByAuthID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fx.CreateUser(ctx, "user_1", "Ada Lovelace")

	got, err := store.GetByAuthID(ctx, "user_1")
	if err != nil {
		t.Fatalf("GetByAuthID failed: %v", err)
	}
	if got.ID != created.ID || got.Name != "Ada Lovelace" {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := store.GetByAuthID(ctx, "missing"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateUser(ctx, "user_a", "Alice")
	b := fx.CreateUser(ctx, "user_b", "Bob")

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	if got[b.ID].Name != "Bob" {
		t.Errorf("expected Bob, got %q", got[b.ID].Name)
	}

	empty, err := store.GetByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty map, got %v %v", empty, err)
	}
}

func TestStore_EnsureForSignIn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := userstore.Identity{AuthID: "user_new", Username: "Newbie", Name: "New User", Image: "https://img/new.png"}

	u, created, err := store.EnsureForSignIn(ctx, id)
	if err != nil {
		t.Fatalf("EnsureForSignIn failed: %v", err)
	}
	if !created {
		t.Error("expected first sign-in to create the user")
	}
	if u.Onboarded {
		t.Error("new user should not be onboarded")
	}
	if u.Username != "newbie" {
		t.Errorf("expected lowercased username, got %q", u.Username)
	}

	again, created, err := store.EnsureForSignIn(ctx, userstore.Identity{AuthID: "user_new", Name: "Changed"})
	if err != nil {
		t.Fatalf("second EnsureForSignIn failed: %v", err)
	}
	if created {
		t.Error("second sign-in should not create")
	}
	if again.ID != u.ID || again.Name != "New User" {
		t.Errorf("existing user should be unchanged, got %+v", again)
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"id": "user_new"})
	if err != nil || n != 1 {
		t.Errorf("expected exactly one user document, got %d (%v)", n, err)
	}
}

func TestStore_EnsureForSignIn_RequiresAuthID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, _, err := store.EnsureForSignIn(ctx, userstore.Identity{Name: "x"}); err == nil {
		t.Error("expected error for empty auth id")
	}
}

func TestStore_Onboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, _, err := store.EnsureForSignIn(ctx, userstore.Identity{AuthID: "user_o", Name: "Temp"}); err != nil {
		t.Fatalf("EnsureForSignIn failed: %v", err)
	}

	err := store.Onboard(ctx, "user_o", userstore.Profile{Username: "ada", Name: "Ada", Bio: "Mathematician"})
	if err != nil {
		t.Fatalf("Onboard failed: %v", err)
	}

	u, err := store.GetByAuthID(ctx, "user_o")
	if err != nil {
		t.Fatalf("GetByAuthID failed: %v", err)
	}
	if !u.Onboarded || u.Name != "Ada" || u.Bio != "Mathematician" || u.NameCI != "ada" {
		t.Errorf("unexpected profile: %+v", u)
	}

	if err := store.Onboard(ctx, "nobody", userstore.Profile{Name: "x"}); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "user_me", "Ada Me")
	fx.CreateUser(ctx, "user_2", "Adam Smith")
	fx.CreateUser(ctx, "user_3", "Bob Jones")

	page, err := store.Search(ctx, userstore.SearchOptions{Query: "ada", ExcludeAuthID: "user_me"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page.Users) != 1 || page.Users[0].AuthID != "user_2" {
		t.Fatalf("expected only Adam, got %+v", page.Users)
	}
	if page.HasNext || page.HasPrev {
		t.Error("single page should have no neighbours")
	}

	all, err := store.Search(ctx, userstore.SearchOptions{})
	if err != nil {
		t.Fatalf("Search all failed: %v", err)
	}
	if len(all.Users) != 3 {
		t.Errorf("expected 3 users, got %d", len(all.Users))
	}
}

func TestStore_Search_Paging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 30; i++ {
		fx.CreateUser(ctx, fmt.Sprintf("user_%02d", i), fmt.Sprintf("Person %02d", i))
	}

	first, err := store.Search(ctx, userstore.SearchOptions{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(first.Users) != 25 || !first.HasNext {
		t.Fatalf("expected full first page with next, got %d next=%v", len(first.Users), first.HasNext)
	}

	second, err := store.Search(ctx, userstore.SearchOptions{After: first.NextCursor})
	if err != nil {
		t.Fatalf("Search page 2 failed: %v", err)
	}
	if len(second.Users) != 5 || second.HasNext || !second.HasPrev {
		t.Errorf("unexpected second page: %d next=%v prev=%v", len(second.Users), second.HasNext, second.HasPrev)
	}
	if second.Users[0].Name != "Person 25" {
		t.Errorf("expected Person 25 first, got %q", second.Users[0].Name)
	}
}
