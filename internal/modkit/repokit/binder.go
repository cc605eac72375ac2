package repokit

import "context"

// Binder builds a domain repo on top of a Queryer, either the pool or an open tx
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind implements Binder
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds b to q and panics when q is nil; wiring code calls it at startup
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

// InTx opens a transaction on db and hands fn a repo bound to it
func InTx[T any](ctx context.Context, db TxRunner, b Binder[T], fn func(T) error) error {
	return db.Tx(ctx, func(q Queryer) error {
		return fn(b.Bind(q))
	})
}
