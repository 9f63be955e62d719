// internal/app/store/threads/threadstore.go
package threadstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/threads/internal/app/system/paging"
	"github.com/dalemusser/threads/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no thread matches.
	ErrNotFound = errors.New("thread not found")
	// ErrEmptyText is returned when a thread or reply has no text.
	ErrEmptyText = errors.New("thread text is required")
)

// ActivityLimit caps the activity list.
const ActivityLimit = 50

// Store persists threads. It reads users and communities to populate cards.
type Store struct {
	c           *mongo.Collection
	users       *mongo.Collection
	communities *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("threads"),
		users:       db.Collection("users"),
		communities: db.Collection("communities"),
	}
}

// NewThread is the input to Create and AddReply.
type NewThread struct {
	Author    primitive.ObjectID
	Text      string
	Community *primitive.ObjectID
}

// Card is a thread with everything needed to render it: its author, its
// community (if any) and its direct replies, each populated the same way
// down to the depth the caller asked for.
type Card struct {
	models.Thread
	AuthorUser    models.User
	CommunityInfo *models.Community
	Replies       []Card
}

// ReplyImages returns the distinct author images of the direct replies in
// reply order.
func (c Card) ReplyImages() []string {
	seen := make(map[string]struct{}, len(c.Replies))
	var out []string
	for _, r := range c.Replies {
		img := r.AuthorUser.Image
		if img == "" {
			continue
		}
		if _, ok := seen[img]; ok {
			continue
		}
		seen[img] = struct{}{}
		out = append(out, img)
	}
	return out
}

// ReplyCount is the number of direct replies.
func (c Card) ReplyCount() int { return len(c.Thread.Children) }

// Create inserts a root thread.
func (s *Store) Create(ctx context.Context, nt NewThread) (models.Thread, error) {
	return s.insert(ctx, nt, nil)
}

func (s *Store) insert(ctx context.Context, nt NewThread, parent *primitive.ObjectID) (models.Thread, error) {
	body := strings.TrimSpace(nt.Text)
	if body == "" {
		return models.Thread{}, ErrEmptyText
	}
	th := models.Thread{
		ID:        primitive.NewObjectID(),
		Author:    nt.Author,
		Text:      body,
		Parent:    parent,
		Children:  []primitive.ObjectID{},
		Community: nt.Community,
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, th); err != nil {
		return models.Thread{}, fmt.Errorf("insert thread: %w", err)
	}
	return th, nil
}

// AddReply inserts a reply under parentID and appends it to the parent's
// children. Replies inherit the parent's community.
func (s *Store) AddReply(ctx context.Context, parentID primitive.ObjectID, nt NewThread) (models.Thread, error) {
	parent, err := s.get(ctx, parentID)
	if err != nil {
		return models.Thread{}, err
	}
	nt.Community = parent.Community
	pid := parent.ID
	reply, err := s.insert(ctx, nt, &pid)
	if err != nil {
		return models.Thread{}, err
	}
	if _, err := s.c.UpdateByID(ctx, parentID, bson.M{"$push": bson.M{"children": reply.ID}}); err != nil {
		return reply, fmt.Errorf("link reply: %w", err)
	}
	return reply, nil
}

func (s *Store) get(ctx context.Context, id primitive.ObjectID) (models.Thread, error) {
	var th models.Thread
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&th); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Thread{}, ErrNotFound
		}
		return models.Thread{}, fmt.Errorf("find thread: %w", err)
	}
	return th, nil
}

// GetByID loads a thread card with its replies, and each reply's replies.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (Card, error) {
	th, err := s.get(ctx, id)
	if err != nil {
		return Card{}, err
	}
	cards, err := s.populate(ctx, []models.Thread{th}, 2)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// FeedPage is one page of the home feed.
type FeedPage struct {
	Cards   []Card
	Page    int
	HasNext bool
}

// ListRoots returns root threads newest first. page is 1-based.
func (s *Store) ListRoots(ctx context.Context, page, size int) (FeedPage, error) {
	if page < 1 {
		page = 1
	}
	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(paging.Skip(page, size)).
		SetLimit(int64(size + 1))

	rows, err := s.find(ctx, bson.M{"parent": nil}, find)
	if err != nil {
		return FeedPage{}, err
	}
	rows, hasNext := paging.TrimTo(rows, size)
	cards, err := s.populate(ctx, rows, 1)
	if err != nil {
		return FeedPage{}, err
	}
	return FeedPage{Cards: cards, Page: page, HasNext: hasNext}, nil
}

// ListByAuthor returns the author's root threads, or their replies when
// replies is true, newest first.
func (s *Store) ListByAuthor(ctx context.Context, author primitive.ObjectID, replies bool) ([]Card, error) {
	filter := bson.M{"author": author, "parent": nil}
	if replies {
		filter["parent"] = bson.M{"$ne": nil}
	}
	return s.listCards(ctx, filter)
}

// ListByCommunity returns the community's root threads newest first.
func (s *Store) ListByCommunity(ctx context.Context, community primitive.ObjectID) ([]Card, error) {
	return s.listCards(ctx, bson.M{"community": community, "parent": nil})
}

func (s *Store) listCards(ctx context.Context, filter bson.M) ([]Card, error) {
	rows, err := s.find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, rows, 1)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

// ToggleLike adds userID to the thread's likers, or removes it if present.
// It returns the new liked state and like count.
func (s *Store) ToggleLike(ctx context.Context, threadID, userID primitive.ObjectID) (bool, int, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var th models.Thread
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": threadID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
		after,
	).Decode(&th)
	if err == nil {
		return false, len(th.Likes), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, fmt.Errorf("unlike thread: %w", err)
	}

	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": threadID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
		after,
	).Decode(&th)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("like thread: %w", err)
	}
	return true, len(th.Likes), nil
}

// Delete removes the thread and all of its descendants, and unlinks it from
// its parent. It returns the number of threads removed.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	th, err := s.get(ctx, id)
	if err != nil {
		return 0, err
	}

	ids := []primitive.ObjectID{th.ID}
	frontier := []primitive.ObjectID{th.ID}
	for len(frontier) > 0 {
		cur, err := s.c.Find(ctx,
			bson.M{"parent": bson.M{"$in": frontier}},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return 0, fmt.Errorf("find descendants: %w", err)
		}
		var kids []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		err = cur.All(ctx, &kids)
		cur.Close(ctx)
		if err != nil {
			return 0, fmt.Errorf("decode descendants: %w", err)
		}
		frontier = frontier[:0]
		for _, k := range kids {
			ids = append(ids, k.ID)
			frontier = append(frontier, k.ID)
		}
	}

	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete threads: %w", err)
	}
	if th.Parent != nil {
		if _, err := s.c.UpdateByID(ctx, *th.Parent, bson.M{"$pull": bson.M{"children": th.ID}}); err != nil {
			return res.DeletedCount, fmt.Errorf("unlink from parent: %w", err)
		}
	}
	return res.DeletedCount, nil
}

// ActivityItem is a reply someone else left on one of the user's threads.
type ActivityItem struct {
	Reply  models.Thread
	Author models.User
}

// Activity lists replies by other users to userID's threads, newest first.
func (s *Store) Activity(ctx context.Context, userID primitive.ObjectID) ([]ActivityItem, error) {
	mine, err := s.find(ctx, bson.M{"author": userID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	if len(mine) == 0 {
		return nil, nil
	}
	parents := make([]primitive.ObjectID, 0, len(mine))
	for _, t := range mine {
		parents = append(parents, t.ID)
	}

	replies, err := s.find(ctx,
		bson.M{"parent": bson.M{"$in": parents}, "author": bson.M{"$ne": userID}},
		newestFirst().SetLimit(ActivityLimit))
	if err != nil {
		return nil, err
	}
	authors, err := s.usersByID(ctx, authorIDs(replies))
	if err != nil {
		return nil, err
	}
	out := make([]ActivityItem, 0, len(replies))
	for _, r := range replies {
		out = append(out, ActivityItem{Reply: r, Author: authors[r.Author]})
	}
	return out, nil
}

/* -------------------------------------------------------------------------- */
/* population helpers                                                          */
/* -------------------------------------------------------------------------- */

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Thread, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find threads: %w", err)
	}
	defer cur.Close(ctx)
	var rows []models.Thread
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode threads: %w", err)
	}
	return rows, nil
}

// populate turns threads into cards, loading replies depth levels down.
func (s *Store) populate(ctx context.Context, rows []models.Thread, depth int) ([]Card, error) {
	if len(rows) == 0 {
		return []Card{}, nil
	}

	authors, err := s.usersByID(ctx, authorIDs(rows))
	if err != nil {
		return nil, err
	}
	communities, err := s.communitiesByID(ctx, rows)
	if err != nil {
		return nil, err
	}

	replies := map[primitive.ObjectID]Card{}
	if depth > 0 {
		var childIDs []primitive.ObjectID
		for _, t := range rows {
			childIDs = append(childIDs, t.Children...)
		}
		if len(childIDs) > 0 {
			kids, err := s.find(ctx, bson.M{"_id": bson.M{"$in": childIDs}}, nil)
			if err != nil {
				return nil, err
			}
			kidCards, err := s.populate(ctx, kids, depth-1)
			if err != nil {
				return nil, err
			}
			for _, k := range kidCards {
				replies[k.ID] = k
			}
		}
	}

	out := make([]Card, 0, len(rows))
	for _, t := range rows {
		card := Card{Thread: t, AuthorUser: authors[t.Author]}
		if t.Community != nil {
			if c, ok := communities[*t.Community]; ok {
				card.CommunityInfo = &c
			}
		}
		// children order is reply order
		for _, cid := range t.Children {
			if r, ok := replies[cid]; ok {
				card.Replies = append(card.Replies, r)
			}
		}
		out = append(out, card)
	}
	return out, nil
}

func authorIDs(rows []models.Thread) []primitive.ObjectID {
	seen := map[primitive.ObjectID]struct{}{}
	var ids []primitive.ObjectID
	for _, t := range rows {
		if _, ok := seen[t.Author]; ok {
			continue
		}
		seen[t.Author] = struct{}{}
		ids = append(ids, t.Author)
	}
	return ids
}

func (s *Store) usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "id": 1, "name": 1, "username": 1, "image": 1}))
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *Store) communitiesByID(ctx context.Context, rows []models.Thread) (map[primitive.ObjectID]models.Community, error) {
	var ids []primitive.ObjectID
	for _, t := range rows {
		if t.Community != nil {
			ids = append(ids, *t.Community)
		}
	}
	out := map[primitive.ObjectID]models.Community{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.communities.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "id": 1, "name": 1, "image": 1}))
	if err != nil {
		return nil, fmt.Errorf("find communities: %w", err)
	}
	defer cur.Close(ctx)
	var cs []models.Community
	if err := cur.All(ctx, &cs); err != nil {
		return nil, fmt.Errorf("decode communities: %w", err)
	}
	for _, c := range cs {
		out[c.ID] = c
	}
	return out, nil
}
