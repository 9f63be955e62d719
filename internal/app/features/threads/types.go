// internal/app/features/threads/types.go
package threads

import (
	"github.com/dalemusser/threads/internal/app/features/shared"
	"github.com/dalemusser/threads/internal/app/system/formutil"
	"github.com/dalemusser/threads/internal/domain/models"
)

// threadInput validates new threads and replies after sanitizing.
type threadInput struct {
	Text string `validate:"required,min=3,max=2000" label:"Thread"`
}

type replyInput struct {
	Text string `validate:"required,min=3,max=2000" label:"Reply"`
}

// detailData is the view model for GET /thread/{id}.
type detailData struct {
	formutil.Base

	Thread  shared.ThreadCard
	Replies []shared.ThreadCard

	// Reply form
	ReplyText string
	UserImage string
}

// communityOption is one "post to" choice on the new-thread form.
type communityOption struct {
	ID       string
	Name     string
	Selected bool
}

// newData is the view model for GET /create-thread.
type newData struct {
	formutil.Base

	Text        string
	Communities []communityOption
}

func communityOptions(cs []models.Community, selected string) []communityOption {
	out := make([]communityOption, 0, len(cs))
	for _, c := range cs {
		id := c.ID.Hex()
		out = append(out, communityOption{ID: id, Name: c.Name, Selected: id == selected})
	}
	return out
}
