// internal/app/features/communities/types.go
package communities

import (
	"github.com/dalemusser/threads/internal/app/features/shared"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/threads/internal/domain/models"
)

// listData is the view model for the communities list.
type listData struct {
	viewdata.BaseVM

	Q           string
	Communities []models.Community

	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// tabItem is a tab with its active state and badge count.
type tabItem struct {
	models.Tab
	Active bool
	Count  int
}

// viewData is the view model for one community.
type viewData struct {
	viewdata.BaseVM

	Community models.Community
	Tabs      []tabItem
	Tab       string

	Threads []shared.ThreadCard
	Members []models.User
}

func buildTabs(active string, threads, members int) []tabItem {
	out := make([]tabItem, 0, len(models.CommunityTabs))
	for _, t := range models.CommunityTabs {
		ti := tabItem{Tab: t, Active: t.Value == active}
		switch t.Value {
		case models.CommunityTabThreads:
			ti.Count = threads
		case models.CommunityTabMembers:
			ti.Count = members
		}
		out = append(out, ti)
	}
	return out
}
