// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/threads/internal/app/system/mongoconn"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Mongo may not be connected yet. Consumers resolve the database through it
// on demand.
type DBDeps struct {
	Mongo *mongoconn.Connector
}
