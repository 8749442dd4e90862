package pages

import (
	"context"
	"sync"

	"github.com/goliatone/go-sitetree/internal/dbtx"
	"github.com/uptrace/bun"
)

// Transactor runs a unit of work atomically across the page repository and
// the value stores the service orchestrates. Tree renumbering, URL cascades,
// and value-row lifecycle commit together or not at all.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// BunTransactor opens one database transaction and threads it through the
// context so every repository and store call inside fn joins it.
type BunTransactor struct {
	db *bun.DB
}

// NewBunTransactor constructs a Transactor backed by the shared bun database.
func NewBunTransactor(db *bun.DB) *BunTransactor {
	return &BunTransactor{db: db}
}

func (t *BunTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(dbtx.With(ctx, tx))
	})
}

// Snapshotter captures the current state of an in-memory store and returns a
// function that restores it.
type Snapshotter interface {
	Snapshot() func()
}

// MemoryTransactor makes a unit of work over in-memory stores all-or-nothing
// by snapshotting every participant up front and restoring them when the work
// fails.
type MemoryTransactor struct {
	mu    sync.Mutex
	parts []Snapshotter
}

// NewMemoryTransactor constructs a Transactor over the supplied stores.
func NewMemoryTransactor(parts ...Snapshotter) *MemoryTransactor {
	return &MemoryTransactor{parts: parts}
}

func (t *MemoryTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	restores := make([]func(), len(t.parts))
	for i, part := range t.parts {
		restores[i] = part.Snapshot()
	}
	if err := fn(ctx); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return err
	}
	return nil
}

// passthroughTransactor runs the work on the caller's context. Used when no
// transactional backend was wired.
type passthroughTransactor struct{}

func (passthroughTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
