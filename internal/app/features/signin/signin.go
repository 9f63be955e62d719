// internal/app/features/signin/signin.go
package signin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	userstore "github.com/dalemusser/threads/internal/app/store/users"
	"github.com/dalemusser/threads/internal/app/system/navigation"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// stateTTL bounds how long a sign-in round trip may take.
const stateTTL = 10 * time.Minute

type signInData struct {
	viewdata.BaseVM
	Error string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sign-in                                                                 |
| Starts the OAuth flow by redirecting to the identity provider.               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignIn(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("identity provider not configured")
		h.renderSignIn(w, r, "Sign-in is not available right now.")
		return
	}

	state := uuid.NewString()
	returnURL := navigation.SafeBackURL(r, navigation.OnboardingBackURL)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.renderSignIn(w, r, "Something went wrong. Please try again.")
		return
	}

	dest := h.OAuth.AuthCodeURL(state)
	h.Log.Debug("initiating OAuth flow", zap.String("return_url", returnURL))
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sign-in/callback                                                        |
| Exchanges the code, fetches the profile and creates the session.             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("OAuth error from identity provider",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.renderSignIn(w, r, "Sign-in was cancelled.")
		return
	}

	state := query.Get(r, "state")
	code := query.Get(r, "code")
	if state == "" || code == "" {
		h.ErrLog.LogBadRequest(w, r, "missing OAuth state or code", nil, "Invalid sign-in response.", "/sign-in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctx, state)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "validate OAuth state failed", err, "Unable to complete sign-in.", "/sign-in")
		return
	}
	if !valid {
		h.ErrLog.LogBadRequest(w, r, "invalid or expired OAuth state", nil, "Your sign-in link expired. Please try again.", "/sign-in")
		return
	}

	token, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "OAuth code exchange failed", err, "Unable to complete sign-in.", "/sign-in")
		return
	}

	info, err := fetchUserInfo(ctx, h.UserInfoURL, token)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "fetch user info failed", err, "Unable to load your profile.", "/sign-in")
		return
	}

	user, created, err := userstore.New(h.DB).EnsureForSignIn(ctx, userstore.Identity{
		AuthID:   info.id(),
		Username: info.username(),
		Name:     info.Name,
		Image:    info.image(),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "ensure user failed", err, "Unable to complete sign-in.", "/sign-in")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to complete sign-in.", "/sign-in")
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", user.AuthID),
		zap.Bool("new_user", created))

	dest := urlutil.SafeReturn(returnURL, "", "/")
	if !user.Onboarded {
		next := "/onboarding"
		if dest != "/" {
			next += "?return=" + url.QueryEscape(dest)
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderSignIn(w http.ResponseWriter, r *http.Request, msg string) {
	templates.Render(w, r, "sign_in", signInData{
		BaseVM: viewdata.NewBaseVM(r, "Sign In", "/"),
		Error:  msg,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Userinfo                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

var errNoSubject = errors.New("userinfo has no subject")

// userInfo accepts both OIDC claim names and the identity provider's own.
type userInfo struct {
	Sub               string `json:"sub"`
	UserID            string `json:"user_id"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Username          string `json:"username"`
	Picture           string `json:"picture"`
	ImageURL          string `json:"image_url"`
}

func (u userInfo) id() string {
	if u.Sub != "" {
		return u.Sub
	}
	return u.UserID
}

func (u userInfo) username() string {
	if u.PreferredUsername != "" {
		return u.PreferredUsername
	}
	return u.Username
}

func (u userInfo) image() string {
	if u.Picture != "" {
		return u.Picture
	}
	return u.ImageURL
}

func fetchUserInfo(ctx context.Context, endpoint string, token *oauth2.Token) (userInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(endpoint)
	if err != nil {
		return userInfo{}, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return userInfo{}, fmt.Errorf("user info: unexpected status code %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, fmt.Errorf("decode user info: %w", err)
	}
	if info.id() == "" {
		return userInfo{}, errNoSubject
	}
	return info, nil
}
