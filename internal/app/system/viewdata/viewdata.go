// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/threads/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// SiteName is shown in the top bar and page titles.
const SiteName = "Threads"

// MenuItem is a main-menu link with its active state for the current page.
type MenuItem struct {
	models.MenuLink
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserID     string
	UserName   string
	UserImage  string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Menu        []MenuItem

	// SearchRoute is where the search bar pushes ?q=; empty hides the bar.
	SearchRoute string
	Query       string
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	path := httpnav.CurrentPath(r)
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: path,
		Menu:        BuildMenu(path),
		SearchRoute: SearchRouteFor(path),
		Query:       strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserID = u.ID
		vm.UserName = u.Name
		vm.UserImage = u.Image
	}
	return vm
}

// BuildMenu marks the menu entry that owns path as active. "/" matches only
// itself; other routes match their own subtree.
func BuildMenu(path string) []MenuItem {
	items := make([]MenuItem, 0, len(models.MainMenu))
	for _, l := range models.MainMenu {
		active := path == l.Route
		if !active && l.Route != "/" {
			active = strings.HasPrefix(path, l.Route+"/")
		}
		items = append(items, MenuItem{MenuLink: l, Active: active})
	}
	return items
}

// SearchRouteFor returns the list route the search bar should target from
// path: community pages search communities, everything else searches users.
func SearchRouteFor(path string) string {
	if path == "/community" || strings.HasPrefix(path, "/community/") {
		return "/community"
	}
	return "/search"
}
