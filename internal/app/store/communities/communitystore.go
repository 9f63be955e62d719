// internal/app/store/communities/communitystore.go
package communitystore

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
	// ErrDuplicateCommunity is returned when a community with the same external id exists.
	ErrDuplicateCommunity = errors.New("a community with this id already exists")
	// ErrNotFound is returned when no community matches.
	ErrNotFound = errors.New("community not found")
	// ErrStaleVersion is returned by UpdateInfo when the stored version is not older.
	ErrStaleVersion = errors.New("community has a newer or equal version")
)

// Store persists communities and keeps the membership edge symmetric with
// users.communities. Cascades touch users and threads.
type Store struct {
	c       *mongo.Collection
	users   *mongo.Collection
	threads *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("communities"),
		users:   db.Collection("users"),
		threads: db.Collection("threads"),
	}
}

// NewCommunity is the input to Create.
type NewCommunity struct {
	ExternalID      string
	Name            string
	Username        string
	Image           string
	Bio             string // defaults to models.DefaultCommunityBio
	CreatedByAuthID string // identity-provider id of the creator
	Version         int64
}

// Create inserts a community. When the creator has signed in before, they
// become created_by and the first member.
func (s *Store) Create(ctx context.Context, nc NewCommunity) (models.Community, error) {
	now := time.Now().UTC()
	c := models.Community{
		ID:          primitive.NewObjectID(),
		ExternalID:  nc.ExternalID,
		Name:        strings.TrimSpace(nc.Name),
		NameCI:      text.Fold(nc.Name),
		Username:    nc.Username,
		UsernameCI:  text.Fold(nc.Username),
		Image:       nc.Image,
		Bio:         nc.Bio,
		Members:     []primitive.ObjectID{},
		SyncVersion: nc.Version,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Bio == "" {
		c.Bio = models.DefaultCommunityBio
	}

	creator, err := s.userIDByAuthID(ctx, nc.CreatedByAuthID)
	if err != nil {
		return models.Community{}, err
	}
	if creator != nil {
		c.CreatedBy = creator
		c.Members = append(c.Members, *creator)
	}

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Community{}, ErrDuplicateCommunity
		}
		return models.Community{}, fmt.Errorf("insert community: %w", err)
	}

	if creator != nil {
		if _, err := s.users.UpdateByID(ctx, *creator, bson.M{"$addToSet": bson.M{"communities": c.ID}}); err != nil {
			return c, fmt.Errorf("link creator: %w", err)
		}
	}
	return c, nil
}

// userIDByAuthID returns nil (no error) when authID is empty or unknown.
func (s *Store) userIDByAuthID(ctx context.Context, authID string) (*primitive.ObjectID, error) {
	if authID == "" {
		return nil, nil
	}
	var u struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.users.FindOne(ctx, bson.M{"id": authID}, options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u.ID, nil
}

// GetByID loads a community by its external (organization) id.
func (s *Store) GetByID(ctx context.Context, externalID string) (models.Community, error) {
	return s.findOne(ctx, bson.M{"id": externalID})
}

// GetByObjectID loads a community by document id.
func (s *Store) GetByObjectID(ctx context.Context, id primitive.ObjectID) (models.Community, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Community, error) {
	var c models.Community
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Community{}, ErrNotFound
		}
		return models.Community{}, fmt.Errorf("find community: %w", err)
	}
	return c, nil
}

// GetByObjectIDs loads communities keyed by document id.
func (s *Store) GetByObjectIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Community, error) {
	out := make(map[primitive.ObjectID]models.Community, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Community, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find communities: %w", err)
	}
	defer cur.Close(ctx)
	var rows []models.Community
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode communities: %w", err)
	}
	return rows, nil
}

// AddMember adds the membership edge between the community and the user on
// both sides. It is idempotent. A missing community or user is a no-op and
// reports applied=false.
func (s *Store) AddMember(ctx context.Context, externalID, userAuthID string) (bool, error) {
	return s.editMember(ctx, externalID, userAuthID, "$addToSet")
}

// RemoveMember removes the membership edge on both sides. Same no-op policy
// as AddMember.
func (s *Store) RemoveMember(ctx context.Context, externalID, userAuthID string) (bool, error) {
	return s.editMember(ctx, externalID, userAuthID, "$pull")
}

func (s *Store) editMember(ctx context.Context, externalID, userAuthID, op string) (bool, error) {
	uid, err := s.userIDByAuthID(ctx, userAuthID)
	if err != nil || uid == nil {
		return false, err
	}

	var c models.Community
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"id": externalID},
		bson.M{op: bson.M{"members": *uid}, "$set": bson.M{"updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetProjection(bson.M{"_id": 1}),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update community members: %w", err)
	}

	if _, err := s.users.UpdateByID(ctx, *uid, bson.M{op: bson.M{"communities": c.ID}}); err != nil {
		return false, fmt.Errorf("update user communities: %w", err)
	}
	return true, nil
}

// Info is the set of fields an organization update may overwrite.
type Info struct {
	ExternalID string
	Name       string
	Username   string
	Image      string
	Version    int64
}

// UpdateInfo overwrites name, username, and image when in.Version is newer
// than the stored sync_version. It returns ErrNotFound for an unknown id and
// ErrStaleVersion when a newer or equal version was already applied.
func (s *Store) UpdateInfo(ctx context.Context, in Info) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"id": in.ExternalID, "sync_version": bson.M{"$lt": in.Version}},
		bson.M{"$set": bson.M{
			"name":         strings.TrimSpace(in.Name),
			"name_ci":      text.Fold(in.Name),
			"username":     in.Username,
			"username_ci":  text.Fold(in.Username),
			"image":        in.Image,
			"sync_version": in.Version,
			"updated_at":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update community: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"id": in.ExternalID})
	if err != nil {
		return fmt.Errorf("count community: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStaleVersion
}

// Delete removes the community, unlinks it from every member, and deletes
// its threads and their replies. A missing community reports deleted=false.
func (s *Store) Delete(ctx context.Context, externalID string) (bool, error) {
	var c models.Community
	err := s.c.FindOneAndDelete(ctx, bson.M{"id": externalID},
		options.FindOneAndDelete().SetProjection(bson.M{"_id": 1})).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete community: %w", err)
	}

	if _, err := s.users.UpdateMany(ctx,
		bson.M{"communities": c.ID},
		bson.M{"$pull": bson.M{"communities": c.ID}},
	); err != nil {
		return true, fmt.Errorf("unlink members: %w", err)
	}
	if _, err := s.threads.DeleteMany(ctx, bson.M{"community": c.ID}); err != nil {
		return true, fmt.Errorf("delete community threads: %w", err)
	}
	return true, nil
}

// ListOptions selects one keyset page of communities ordered by name.
type ListOptions struct {
	Query  string // prefix on name or username
	After  string
	Before string
}

// Page is one keyset page of communities.
type Page struct {
	Communities []models.Community
	HasPrev     bool
	HasNext     bool
	PrevCursor  string
	NextCursor  string
}

// List returns communities whose folded name or username starts with opts.Query.
func (s *Store) List(ctx context.Context, opts ListOptions) (Page, error) {
	base := bson.M{}
	if lo, hi := text.PrefixRange(opts.Query); lo != "" {
		base["$or"] = []bson.M{
			{"name_ci": bson.M{"$gte": lo, "$lt": hi}},
			{"username_ci": bson.M{"$gte": lo, "$lt": hi}},
		}
	}

	ks := paging.NewKeyset("name_ci", opts.Before, opts.After)
	rows, err := s.find(ctx, ks.Filter(base), ks.FindOptions())
	if err != nil {
		return Page{}, err
	}
	rows, w := paging.Finish(ks, rows, func(c models.Community) (string, primitive.ObjectID) {
		return c.NameCI, c.ID
	})
	return Page{
		Communities: rows,
		HasPrev:     w.HasPrev,
		HasNext:     w.HasNext,
		PrevCursor:  w.PrevCursor,
		NextCursor:  w.NextCursor,
	}, nil
}

// Members returns the community's members ordered by name.
func (s *Store) Members(ctx context.Context, c models.Community) ([]models.User, error) {
	if len(c.Members) == 0 {
		return nil, nil
	}
	cur, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": c.Members}},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return users, nil
}

// ListForUser returns the communities userID belongs to, ordered by name.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Community, error) {
	return s.find(ctx, bson.M{"members": userID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
}
