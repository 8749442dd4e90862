// Package dbtx carries a database transaction handle through the context so
// repositories and stores invoked inside one unit of work join the same
// transaction instead of opening their own.
package dbtx

import (
	"context"

	"github.com/uptrace/bun"
)

type ctxKey struct{}

// With returns a context carrying the transaction handle.
func With(ctx context.Context, idb bun.IDB) context.Context {
	return context.WithValue(ctx, ctxKey{}, idb)
}

// From returns the transaction handle carried by the context, if any.
func From(ctx context.Context) (bun.IDB, bool) {
	idb, ok := ctx.Value(ctxKey{}).(bun.IDB)
	return idb, ok && idb != nil
}

// Resolve returns the transaction handle carried by the context, falling back
// to the supplied connection when none is present.
func Resolve(ctx context.Context, fallback bun.IDB) bun.IDB {
	if idb, ok := From(ctx); ok {
		return idb
	}
	return fallback
}
