// Package navigation provides helpers for safe post-action redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required path prefix (e.g. "/thread"). Empty allows
	// any safe local URL.
	AllowedPrefix string

	// ExcludedSubpaths reject action URLs so a redirect never lands on a POST-only route.
	ExcludedSubpaths []string

	// ExcludeID rejects return URLs naming this id, e.g. a thread that was just deleted.
	ExcludeID string

	Fallback string
}

// SafeBackURL reads "return" from the query string, then the form, and
// returns it when it is a local URL passing opts. Otherwise opts.Fallback.
//
//	dest := navigation.SafeBackURL(r, navigation.ThreadActionBackURL)
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), opts.ExcludeID, "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), opts.ExcludeID, "")
	}
	if ret == "" {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, excluded := range opts.ExcludedSubpaths {
		if strings.Contains(ret, excluded) {
			return opts.Fallback
		}
	}
	return ret
}

// WithExcludedID returns a copy of opts that also rejects URLs naming id.
func (opts BackURLOptions) WithExcludedID(id string) BackURLOptions {
	opts.ExcludeID = id
	return opts
}

var (
	// ThreadActionBackURL is used after like, reply, and delete. Those
	// actions are reachable from the feed, profiles, and communities.
	ThreadActionBackURL = BackURLOptions{
		ExcludedSubpaths: []string{"/like", "/delete", "/reply"},
		Fallback:         "/",
	}

	// OnboardingBackURL is used once onboarding completes.
	OnboardingBackURL = BackURLOptions{
		ExcludedSubpaths: []string{"/onboarding", "/sign-in", "/sign-out"},
		Fallback:         "/",
	}
)
