package webhook_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/threads/internal/app/features/webhook"
	communitystore "github.com/dalemusser/threads/internal/app/store/communities"
	"github.com/dalemusser/threads/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newDBHandler(t *testing.T) (*webhook.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return webhook.NewHandler(db, newVerifier(t), zap.NewNop()), db
}

func countCommunities(t *testing.T, db *mongo.Database) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection("communities").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count communities: %v", err)
	}
	return n
}

func TestClerk_EndToEnd_OrganizationCreated(t *testing.T) {
	h, db := newDBHandler(t)

	rec := serve(h, signedRequest(t, orgCreatedBody))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, body(rec))
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "User created" {
		t.Errorf("message = %q, want %q", resp.Message, "User created")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	c, err := communitystore.New(db).GetByID(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.Name != "acme" || c.Username != "acme" {
		t.Errorf("community = %+v", c)
	}
	if c.CreatedBy != nil {
		t.Errorf("CreatedBy = %v, want nil for a creator who never signed in", c.CreatedBy)
	}
	if n := countCommunities(t, db); n != 1 {
		t.Errorf("communities = %d, want 1", n)
	}
}

func TestClerk_CreatedLinksKnownCreator(t *testing.T) {
	h, db := newDBHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	creator := testutil.NewFixtures(t, db).CreateUser(ctx, "user_1", "Creator")

	if rec := serve(h, signedRequest(t, orgCreatedBody)); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	c, err := communitystore.New(db).GetByID(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.CreatedBy == nil || *c.CreatedBy != creator.ID {
		t.Errorf("CreatedBy = %v, want %v", c.CreatedBy, creator.ID)
	}
	if !c.HasMember(creator.ID) {
		t.Error("creator should be the first member")
	}
}

func TestClerk_VerificationFailureWritesNothing(t *testing.T) {
	h, db := newDBHandler(t)

	req := signedRequest(t, orgCreatedBody)
	req.Header.Set("svix-signature", "v1,AAAA")
	rec := serve(h, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if n := countCommunities(t, db); n != 0 {
		t.Errorf("communities = %d, want 0", n)
	}
}

// Redelivery is not deduplicated: the unique index rejects the second insert.
func TestClerk_DuplicateCreatedIs500(t *testing.T) {
	h, db := newDBHandler(t)

	if rec := serve(h, signedRequest(t, orgCreatedBody)); rec.Code != http.StatusCreated {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := serve(h, signedRequest(t, orgCreatedBody))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("second status = %d, want 500", rec.Code)
	}
	if n := countCommunities(t, db); n != 1 {
		t.Errorf("communities = %d, want 1", n)
	}
}

func TestClerk_MembershipRoundTrip(t *testing.T) {
	h, db := newDBHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	comm := fx.CreateCommunity(ctx, "org_1", "acme")
	member := fx.CreateUser(ctx, "user_2", "Member")
	store := communitystore.New(db)

	if rec := serve(h, signedRequest(t, memberAddBody)); rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}
	// Redelivered add is idempotent.
	if rec := serve(h, signedRequest(t, memberAddBody)); rec.Code != http.StatusCreated {
		t.Fatalf("re-add status = %d", rec.Code)
	}

	c, err := store.GetByID(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(c.Members) != 1 || !c.HasMember(member.ID) {
		t.Errorf("members after add = %v", c.Members)
	}
	var u struct {
		Communities []any `bson:"communities"`
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": member.ID}).Decode(&u); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if len(u.Communities) != 1 {
		t.Errorf("user communities after add = %v", u.Communities)
	}

	rec := serve(h, signedRequest(t, memberDelBody))
	if rec.Code != http.StatusCreated || body(rec) != `{"message":"Member removed"}` {
		t.Fatalf("remove: %d %s", rec.Code, body(rec))
	}

	c, err = store.GetByObjectID(ctx, comm.ID)
	if err != nil {
		t.Fatalf("GetByObjectID: %v", err)
	}
	if len(c.Members) != 0 {
		t.Errorf("members after remove = %v", c.Members)
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": member.ID}).Decode(&u); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if len(u.Communities) != 0 {
		t.Errorf("user communities after remove = %v", u.Communities)
	}
}

func TestClerk_MembershipForMissingCommunityIsNoop(t *testing.T) {
	h, db := newDBHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateUser(ctx, "user_2", "Member")

	rec := serve(h, signedRequest(t, memberAddBody))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if n := countCommunities(t, db); n != 0 {
		t.Errorf("communities = %d, want 0", n)
	}
}

func TestClerk_UpdatedTouchesOnlyMirroredFields(t *testing.T) {
	h, db := newDBHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	orig := testutil.NewFixtures(t, db).CreateCommunity(ctx, "org_1", "acme")
	if _, err := db.Collection("communities").UpdateByID(ctx, orig.ID, bson.M{"$set": bson.M{"bio": "hand written"}}); err != nil {
		t.Fatalf("set bio: %v", err)
	}

	rec := serve(h, signedRequest(t, orgUpdatedBody))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; body=%s", rec.Code, body(rec))
	}

	c, err := communitystore.New(db).GetByID(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.Name != "Acme Inc" || c.Username != "acme-inc" || c.Image != "https://img.example.com/acme2.png" {
		t.Errorf("community = %+v", c)
	}
	if c.Bio != "hand written" {
		t.Errorf("Bio = %q, want untouched", c.Bio)
	}
	if c.ID != orig.ID {
		t.Error("document id changed")
	}
}

func TestClerk_OutOfOrderUpdateIsSkipped(t *testing.T) {
	h, db := newDBHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateCommunity(ctx, "org_1", "acme")

	if rec := serve(h, signedRequest(t, orgUpdatedBody)); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	older := `{"type":"organization.updated","data":{"id":"org_1","name":"Old Name","slug":"old","logo_url":"https://img.example.com/old.png","updated_at":1700000001000}}`
	rec := serve(h, signedRequest(t, older))
	if rec.Code != http.StatusCreated {
		t.Fatalf("stale status = %d, want 201", rec.Code)
	}

	c, err := communitystore.New(db).GetByID(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.Name != "Acme Inc" {
		t.Errorf("Name = %q, want the newer update to win", c.Name)
	}
}

func TestClerk_DeletedRemovesCommunity(t *testing.T) {
	h, db := newDBHandler(t)

	if rec := serve(h, signedRequest(t, orgCreatedBody)); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	rec := serve(h, signedRequest(t, orgDeletedBody))
	if rec.Code != http.StatusCreated {
		t.Fatalf("delete status = %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := communitystore.New(db).GetByID(ctx, "org_1")
	if !errors.Is(err, communitystore.ErrNotFound) {
		t.Errorf("GetByID err = %v, want ErrNotFound", err)
	}

	// Deleting again is acknowledged.
	if rec := serve(h, signedRequest(t, orgDeletedBody)); rec.Code != http.StatusCreated {
		t.Errorf("second delete status = %d, want 201", rec.Code)
	}
}
