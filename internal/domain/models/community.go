// internal/domain/models/community.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCommunityBio is stored for communities created from an organization event.
const DefaultCommunityBio = "A new organization"

// Community mirrors an identity-provider organization.
// ExternalID equals the organization id and is the join key for synchronization events.
type Community struct {
	ID          primitive.ObjectID   `bson:"_id"`
	ExternalID  string               `bson:"id"`
	Name        string               `bson:"name"`
	NameCI      string               `bson:"name_ci"` // ← always stored
	Username    string               `bson:"username"`
	UsernameCI  string               `bson:"username_ci"` // ← always stored
	Image       string               `bson:"image"`
	Bio         string               `bson:"bio"`
	CreatedBy   *primitive.ObjectID  `bson:"created_by,omitempty"`
	Members     []primitive.ObjectID `bson:"members"`
	SyncVersion int64                `bson:"sync_version"` // last applied event version (ms)
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

// HasMember reports whether userID is in the community's member set.
func (c Community) HasMember(userID primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}
