package repositories

import (
	"context"
)

// UnitOfWork executes a function within a transaction scope. Repository
// calls made with the context passed to fn join the same transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
