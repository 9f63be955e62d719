// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/threads/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's display name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. This ensures callers can trust that ok=true means a
// valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// IsAuthor reports whether the current request's user wrote the content
// identified by authorID.
func IsAuthor(r *http.Request, authorID primitive.ObjectID) bool {
	_, uid, ok := UserCtx(r)
	return ok && uid == authorID
}

// IsOnboarded reports whether the current user has completed onboarding.
func IsOnboarded(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.Onboarded
}
