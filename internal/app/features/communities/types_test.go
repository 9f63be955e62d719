package communities

import (
	"testing"

	"github.com/dalemusser/threads/internal/domain/models"
)

func TestBuildTabs(t *testing.T) {
	tabs := buildTabs(models.CommunityTabMembers, 4, 2)

	if len(tabs) != 2 {
		t.Fatalf("tabs = %d, want 2 (threads, members)", len(tabs))
	}
	if tabs[0].Value != models.CommunityTabThreads || tabs[0].Count != 4 || tabs[0].Active {
		t.Errorf("threads tab = %+v", tabs[0])
	}
	if tabs[1].Value != models.CommunityTabMembers || tabs[1].Count != 2 || !tabs[1].Active {
		t.Errorf("members tab = %+v", tabs[1])
	}
}

func TestCommunityTab_UnknownFallsBackToThreads(t *testing.T) {
	for _, v := range []string{"", "requests", "bogus"} {
		if got := models.TabOrDefault(models.CommunityTabs, v); got != models.CommunityTabThreads {
			t.Errorf("TabOrDefault(%q) = %q, want %q", v, got, models.CommunityTabThreads)
		}
	}
}
