package application

import "context"

// Query is a read against system state; it never mutates.
type Query interface {
	QueryName() string
}

// QueryHandler answers one query type with result R.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
