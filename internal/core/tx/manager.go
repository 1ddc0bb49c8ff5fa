// Package tx defines the transaction contract services depend on. The
// transaction travels in the context, so repositories called inside fn
// join it without extra parameters.
package tx

import (
	"context"
)

// Manager runs fn in a transaction: committed when fn returns nil, rolled
// back otherwise. A call made while a transaction is already in ctx joins
// it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager also offers read-only transactions.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnly runs fn in a read-only transaction when m supports one and in a
// regular transaction otherwise. Several reads of one document then see the
// same snapshot.
func ReadOnly(ctx context.Context, m Manager, fn func(ctx context.Context) error) error {
	if ro, ok := m.(ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return m.RunInTransaction(ctx, fn)
}
