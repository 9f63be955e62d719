// Package htmlsanitize strips markup from user-entered text before storage
// and formats stored text for display.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag. Script and style element content is dropped too.
var strict = bluemonday.StrictPolicy()

// Sanitize returns s with all HTML removed, as plain text. The result is
// unescaped so templates can escape it exactly once at render time.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// PlainTextToHTML escapes s and converts newlines to <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// PrepareForDisplay renders stored thread text safely, preserving line breaks.
func PrepareForDisplay(s string) template.HTML {
	return template.HTML(PlainTextToHTML(s))
}
