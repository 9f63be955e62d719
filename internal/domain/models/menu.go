// internal/domain/models/menu.go
package models

// MenuLink is one entry of the main navigation menu.
type MenuLink struct {
	ImgURL string
	Route  string
	Label  string
}

// MainMenu is shown in the left sidebar and the bottom bar.
var MainMenu = []MenuLink{
	{ImgURL: "/static/assets/home.svg", Route: "/", Label: "Home"},
	{ImgURL: "/static/assets/search.svg", Route: "/search", Label: "Search"},
	{ImgURL: "/static/assets/heart.svg", Route: "/activity", Label: "Activity"},
	{ImgURL: "/static/assets/create.svg", Route: "/create-thread", Label: "New Thread"},
	{ImgURL: "/static/assets/community.svg", Route: "/community", Label: "Communities"},
	{ImgURL: "/static/assets/user.svg", Route: "/profile", Label: "Profile"},
}

// Tab is a selectable tab on the profile and community pages.
type Tab struct {
	Value string
	Label string
	Icon  string
}

// Profile tab values.
const (
	ProfileTabThreads = "threads"
	ProfileTabReplies = "replies"
	ProfileTabTagged  = "tagged"
)

// Community tab values.
const (
	CommunityTabThreads = "threads"
	CommunityTabMembers = "members"
)

var ProfileTabs = []Tab{
	{Value: ProfileTabThreads, Label: "Threads", Icon: "/static/assets/reply.svg"},
	{Value: ProfileTabReplies, Label: "Replies", Icon: "/static/assets/replies.svg"},
	{Value: ProfileTabTagged, Label: "Tagged", Icon: "/static/assets/tag.svg"},
}

var CommunityTabs = []Tab{
	{Value: CommunityTabThreads, Label: "Threads", Icon: "/static/assets/reply.svg"},
	{Value: CommunityTabMembers, Label: "Members", Icon: "/static/assets/members.svg"},
}

// TabOrDefault returns value when it names one of tabs, otherwise the first tab's value.
func TabOrDefault(tabs []Tab, value string) string {
	for _, t := range tabs {
		if t.Value == value {
			return value
		}
	}
	if len(tabs) == 0 {
		return ""
	}
	return tabs[0].Value
}
