// Package mongoconn owns the process-wide MongoDB client.
//
// The client is created once through an explicit Connector. Concurrent first
// callers share a single connect attempt; a failed attempt leaves the
// Connector empty so the next caller tries again. A Connector without a URI
// never dials: every caller gets ErrNoURI and the process keeps running.
package mongoconn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ErrNoURI is returned when the connector has no connection string.
var ErrNoURI = errors.New("mongoconn: missing MongoDB URI")

// Options configures the client pool.
type Options struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

// DialFunc opens a client. The default connects and pings the primary.
type DialFunc func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// Connector lazily establishes one shared *mongo.Client.
type Connector struct {
	opts Options
	log  *zap.Logger
	dial DialFunc

	mu        sync.Mutex
	client    *mongo.Client
	onConnect SetupFunc
}

// SetupFunc runs against the database right after a connection is made.
type SetupFunc func(ctx context.Context, db *mongo.Database) error

// New returns a Connector; nothing is dialed until Client is called.
func New(opts Options, logger *zap.Logger) *Connector {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	return &Connector{opts: opts, log: logger, dial: dialAndPing}
}

// WithDial replaces the dial function. Intended for tests.
func (c *Connector) WithDial(fn DialFunc) *Connector {
	c.dial = fn
	return c
}

func dialAndPing(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Client returns the shared client, connecting on first use.
func (c *Connector) Client(ctx context.Context) (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.opts.URI == "" {
		return nil, ErrNoURI
	}

	clientOpts := options.Client().ApplyURI(c.opts.URI)
	if c.opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(c.opts.MaxPoolSize)
	}
	if c.opts.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(c.opts.MinPoolSize)
	}

	dctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	start := time.Now()
	client, err := c.dial(dctx, clientOpts)
	if err != nil {
		c.log.Error("MongoDB connection error", zap.Error(err))
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if c.onConnect != nil {
		if err := c.onConnect(ctx, client.Database(c.opts.Database)); err != nil {
			_ = client.Disconnect(context.Background())
			c.log.Error("MongoDB post-connect setup failed", zap.Error(err))
			return nil, fmt.Errorf("post-connect setup: %w", err)
		}
	}
	c.client = client
	c.log.Info("connected to MongoDB",
		zap.String("database", c.opts.Database),
		zap.Duration("took", time.Since(start)))
	return client, nil
}

// Configured reports whether a connection string was supplied.
func (c *Connector) Configured() bool { return c.opts.URI != "" }

// AfterConnect registers fn to run on every newly established connection.
// When the Connector is already connected, fn also runs now and its error is
// returned. A failing fn discards the new connection, so the next caller
// reconnects and runs fn again.
func (c *Connector) AfterConnect(ctx context.Context, fn SetupFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = fn
	if c.client == nil {
		return nil
	}
	return fn(ctx, c.client.Database(c.opts.Database))
}

// Ping resolves the shared client and pings it.
func (c *Connector) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	client, err := c.Client(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, rp)
}

// Database returns the configured database on the shared client.
func (c *Connector) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := c.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(c.opts.Database), nil
}

// Close disconnects the shared client if one was established.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	return err
}
