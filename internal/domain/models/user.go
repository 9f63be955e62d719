// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a person known to the identity provider.
//
// NOTE:
//   - AuthID is the identity provider's user id; ID is our own document id.
//     Threads, likes, and memberships reference ID, never AuthID.
//   - Communities and Community.Members are the two halves of one membership edge.
type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	AuthID      string               `bson:"id" json:"id"`
	Username    string               `bson:"username" json:"username"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Image       string               `bson:"image,omitempty" json:"image,omitempty"`
	Bio         string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Onboarded   bool                 `bson:"onboarded" json:"onboarded"`
	Communities []primitive.ObjectID `bson:"communities" json:"communities"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// InCommunity reports whether the user holds a membership edge to the community.
func (u User) InCommunity(id primitive.ObjectID) bool {
	for _, c := range u.Communities {
		if c == id {
			return true
		}
	}
	return false
}
