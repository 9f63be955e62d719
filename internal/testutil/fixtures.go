package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/threads/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data. Documents are
// inserted directly so fixtures never depend on the stores under test.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an onboarded user with the given identity-provider id.
func (f *Fixtures) CreateUser(ctx context.Context, authID, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:          primitive.NewObjectID(),
		AuthID:      authID,
		Username:    authID,
		Name:        name,
		NameCI:      text.Fold(name),
		Image:       "https://img.example.com/" + authID + ".png",
		Onboarded:   true,
		Communities: []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateCommunity inserts a community mirroring organization externalID.
func (f *Fixtures) CreateCommunity(ctx context.Context, externalID, name string) models.Community {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Community{
		ID:         primitive.NewObjectID(),
		ExternalID: externalID,
		Name:       name,
		NameCI:     text.Fold(name),
		Username:   externalID,
		UsernameCI: text.Fold(externalID),
		Image:      "https://img.example.com/" + externalID + ".png",
		Bio:        models.DefaultCommunityBio,
		Members:    []primitive.ObjectID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("communities").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test community: %v", err)
	}
	return c
}

// CreateThread inserts a root thread. community may be nil.
func (f *Fixtures) CreateThread(ctx context.Context, author primitive.ObjectID, body string, community *primitive.ObjectID) models.Thread {
	f.t.Helper()
	return f.insertThread(ctx, models.Thread{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Text:      body,
		Community: community,
		Children:  []primitive.ObjectID{},
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	})
}

// CreateReply inserts a reply to parent and links it into parent.children.
func (f *Fixtures) CreateReply(ctx context.Context, parent models.Thread, author primitive.ObjectID, body string) models.Thread {
	f.t.Helper()
	pid := parent.ID
	reply := f.insertThread(ctx, models.Thread{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Text:      body,
		Parent:    &pid,
		Community: parent.Community,
		Children:  []primitive.ObjectID{},
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	})
	_, err := f.db.Collection("threads").UpdateByID(ctx, parent.ID, bson.M{
		"$push": bson.M{"children": reply.ID},
	})
	if err != nil {
		f.t.Fatalf("failed to link reply: %v", err)
	}
	return reply
}

func (f *Fixtures) insertThread(ctx context.Context, th models.Thread) models.Thread {
	f.t.Helper()
	if _, err := f.db.Collection("threads").InsertOne(ctx, th); err != nil {
		f.t.Fatalf("failed to create test thread: %v", err)
	}
	return th
}
