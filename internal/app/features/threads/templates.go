// internal/app/features/threads/templates.go
package threads

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "threads",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
