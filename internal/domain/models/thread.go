// internal/domain/models/thread.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thread is a post. A thread with a Parent is a reply; root threads have none.
// Children holds direct replies in the order they were added.
type Thread struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Text      string               `bson:"text" json:"text"`
	Parent    *primitive.ObjectID  `bson:"parent,omitempty" json:"parent,omitempty"`
	Children  []primitive.ObjectID `bson:"children" json:"children"`
	Community *primitive.ObjectID  `bson:"community,omitempty" json:"community,omitempty"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}

// IsReply reports whether the thread answers another thread.
func (t Thread) IsReply() bool {
	return t.Parent != nil
}

// LikedBy reports whether userID is among the thread's likers.
func (t Thread) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range t.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
