// internal/app/features/communities/templates.go
package communities

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "communities",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
