package mongoconn

import (
	"net/http"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BuildFunc builds the handler tree that needs a live database.
type BuildFunc func(db *mongo.Database) http.Handler

// Deferred serves requests through a handler built on first successful
// connect. Until a connect succeeds, each request retries the connect and
// gets the unavailable handler on failure.
type Deferred struct {
	conn        *Connector
	build       BuildFunc
	unavailable http.Handler
	log         *zap.Logger

	mu sync.Mutex
	h  http.Handler
}

// Defer wraps build so the database is resolved per request until it exists.
func (c *Connector) Defer(build BuildFunc, unavailable http.Handler) *Deferred {
	return &Deferred{conn: c, build: build, unavailable: unavailable, log: c.log}
}

func (d *Deferred) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, err := d.handler(r)
	if err != nil {
		d.log.Warn("database unavailable",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		d.unavailable.ServeHTTP(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

func (d *Deferred) handler(r *http.Request) (http.Handler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.h != nil {
		return d.h, nil
	}
	db, err := d.conn.Database(r.Context())
	if err != nil {
		return nil, err
	}
	d.h = d.build(db)
	return d.h, nil
}
