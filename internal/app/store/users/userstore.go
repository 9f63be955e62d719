package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/threads/internal/app/system/paging"
	"github.com/dalemusser/threads/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	errNoAuthID = errors.New("identity-provider id is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByAuthID loads a user by identity-provider id.
func (s *Store) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"id": authID})
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// GetByIDs loads the users in ids keyed by ObjectID. Missing ids are absent
// from the map.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.User
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

// Identity is what the identity provider tells us at sign-in.
type Identity struct {
	AuthID   string
	Username string
	Name     string
	Image    string
}

// EnsureForSignIn returns the user for id.AuthID, creating a not-yet-onboarded
// record on first sign-in. Existing users are returned unchanged.
func (s *Store) EnsureForSignIn(ctx context.Context, id Identity) (models.User, bool, error) {
	if strings.TrimSpace(id.AuthID) == "" {
		return models.User{}, false, errNoAuthID
	}
	now := time.Now().UTC()
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = id.Username
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"id": id.AuthID},
		bson.M{"$setOnInsert": bson.M{
			"_id":         primitive.NewObjectID(),
			"username":    strings.ToLower(strings.TrimSpace(id.Username)),
			"name":        name,
			"name_ci":     text.Fold(name),
			"image":       id.Image,
			"onboarded":   false,
			"communities": []primitive.ObjectID{},
			"created_at":  now,
			"updated_at":  now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two first sign-ins racing: the loser sees the unique index.
		if !wafflemongo.IsDup(err) {
			return models.User{}, false, fmt.Errorf("upsert user: %w", err)
		}
	}
	u, err := s.GetByAuthID(ctx, id.AuthID)
	if err != nil {
		return models.User{}, false, err
	}
	return *u, res != nil && res.UpsertedCount == 1, nil
}

// Profile holds the user-editable fields set during onboarding.
type Profile struct {
	Username string
	Name     string
	Bio      string
	Image    string
}

// Onboard stores the profile and marks the user onboarded.
func (s *Store) Onboard(ctx context.Context, authID string, p Profile) error {
	set := bson.M{
		"username":   strings.ToLower(strings.TrimSpace(p.Username)),
		"name":       strings.TrimSpace(p.Name),
		"name_ci":    text.Fold(p.Name),
		"bio":        p.Bio,
		"onboarded":  true,
		"updated_at": time.Now().UTC(),
	}
	if p.Image != "" {
		set["image"] = p.Image
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"id": authID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("onboard user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchOptions selects one keyset page of users ordered by name.
type SearchOptions struct {
	Query         string // prefix on name or username; empty = everyone
	ExcludeAuthID string
	After         string
	Before        string
}

// Page is one keyset page of users.
type Page struct {
	Users      []models.User
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// Search lists users whose folded name or username starts with opts.Query.
func (s *Store) Search(ctx context.Context, opts SearchOptions) (Page, error) {
	base := bson.M{"onboarded": true}
	if opts.ExcludeAuthID != "" {
		base["id"] = bson.M{"$ne": opts.ExcludeAuthID}
	}
	if lo, hi := text.PrefixRange(opts.Query); lo != "" {
		base["$or"] = []bson.M{
			{"name_ci": bson.M{"$gte": lo, "$lt": hi}},
			{"username": bson.M{"$gte": lo, "$lt": hi}},
		}
	}

	ks := paging.NewKeyset("name_ci", opts.Before, opts.After)
	cur, err := s.c.Find(ctx, ks.Filter(base), ks.FindOptions())
	if err != nil {
		return Page{}, fmt.Errorf("search users: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.User
	if err := cur.All(ctx, &rows); err != nil {
		return Page{}, fmt.Errorf("decode users: %w", err)
	}
	rows, w := paging.Finish(ks, rows, func(u models.User) (string, primitive.ObjectID) {
		return u.NameCI, u.ID
	})
	return Page{
		Users:      rows,
		HasPrev:    w.HasPrev,
		HasNext:    w.HasNext,
		PrevCursor: w.PrevCursor,
		NextCursor: w.NextCursor,
	}, nil
}
