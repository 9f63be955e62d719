// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with
// the user's previously entered values, an error message explaining what went
// wrong, and the page chrome.
//
// Example usage:
//
//	type onboardingData struct {
//		formutil.Base
//		Name string
//		Bio  string
//	}
//
//	data := onboardingData{Name: name, Bio: bio}
//	formutil.SetBase(&data.Base, r, "Onboarding", "/")
//	data.SetError("Name is required.")
//	templates.Render(w, r, "onboarding", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/threads/internal/app/system/viewdata"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error template.HTML
}

// SetBase populates the embedded BaseVM from the request.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the error message on a Base struct. msg is escaped.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}
