package application

import "context"

// UnitOfWork scopes a transaction. Begin returns a derived context that
// repositories recognize, so every write inside it shares one transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc runs inside an open transaction.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork runs fn transactionally: commit on success, rollback on
// any error.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}
