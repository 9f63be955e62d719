// internal/app/features/profile/onboarding.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/threads/internal/app/store/users"
	"github.com/dalemusser/threads/internal/app/system/auth"
	"github.com/dalemusser/threads/internal/app/system/formutil"
	"github.com/dalemusser/threads/internal/app/system/htmlsanitize"
	"github.com/dalemusser/threads/internal/app/system/inputval"
	"github.com/dalemusser/threads/internal/app/system/limits"
	"github.com/dalemusser/threads/internal/app/system/navigation"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type onboardingInput struct {
	Username string `validate:"required,min=3,max=30,alphanum" label:"Username"`
	Name     string `validate:"required,min=3,max=30" label:"Name"`
	Bio      string `validate:"required,min=3,max=1000" label:"Bio"`
	Image    string `validate:"httpurl" label:"Profile photo URL"`
}

type onboardingData struct {
	formutil.Base

	Username string
	Name     string
	Bio      string
	Image    string
	Return   string
}

// ServeOnboarding renders the profile form. Onboarded users go home.
func (h *Handler) ServeOnboarding(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}
	if u.Onboarded {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := onboardingData{
		Username: u.Username,
		Name:     u.Name,
		Image:    u.Image,
		Return:   navigation.SafeBackURL(r, navigation.OnboardingBackURL),
	}
	if user, err := userstore.New(h.DB).GetByAuthID(ctx, u.AuthID); err == nil {
		data.Bio = user.Bio
	}
	formutil.SetBase(&data.Base, r, "Onboarding", "/")
	templates.Render(w, r, "onboarding", data)
}

// HandleOnboarding saves the profile and marks the user onboarded.
func (h *Handler) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}
	limits.LimitForm(w, r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/onboarding")
		return
	}

	in := onboardingInput{
		Username: strings.TrimSpace(r.FormValue("username")),
		Name:     htmlsanitize.Sanitize(r.FormValue("name")),
		Bio:      htmlsanitize.Sanitize(r.FormValue("bio")),
		Image:    strings.TrimSpace(r.FormValue("image")),
	}
	dest := navigation.SafeBackURL(r, navigation.OnboardingBackURL)

	renderWithError := func(msg string) {
		data := onboardingData{Username: in.Username, Name: in.Name, Bio: in.Bio, Image: in.Image, Return: dest}
		formutil.SetBase(&data.Base, r, "Onboarding", "/")
		data.SetError(msg)
		templates.Render(w, r, "onboarding", data)
	}

	if res := inputval.Validate(in); res.HasErrors() {
		renderWithError(res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := userstore.New(h.DB).Onboard(ctx, u.AuthID, userstore.Profile{
		Username: in.Username,
		Name:     in.Name,
		Bio:      in.Bio,
		Image:    in.Image,
	})
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "onboard missing user", "Your account could not be found. Please sign in again.", "/sign-in")
		return
	}
	if err != nil {
		renderWithError("Database error while saving your profile.")
		h.Log.Error("onboard failed", zap.String("user_id", u.AuthID), zap.Error(err))
		return
	}

	h.Log.Info("user onboarded", zap.String("user_id", u.AuthID))
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
