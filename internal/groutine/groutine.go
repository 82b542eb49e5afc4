// Package groutine starts named goroutines. The name is attached as a pprof
// label so blocked scan loops are easy to spot in goroutine dumps.
package groutine

import (
	"context"
	"runtime/pprof"
)

type ctxKey string

const nameKey ctxKey = "goroutine_name"

// Go runs fn in a new goroutine labelled name.
//
//	groutine.Go(ctx, "tinygo-scan", func(ctx context.Context) {
//	    errCh <- adapter.Scan(cb)
//	})
//
// If parent is nil, context.Background() is used. fn receives a context
// carrying the name; cancellation still follows parent.
func Go(parent context.Context, name string, fn func(ctx context.Context)) {
	if parent == nil {
		parent = context.Background()
	}

	go pprof.Do(parent, pprof.Labels("goroutine_name", name), func(ctx context.Context) {
		fn(context.WithValue(ctx, nameKey, name))
	})
}

// Name returns the goroutine name stored by Go, or "".
func Name(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(nameKey).(string)
	return name
}
