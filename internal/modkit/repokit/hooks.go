package repokit

import "context"

// BeginHook runs first inside every transaction, e.g. to SET LOCAL a session setting
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns a TxRunner whose Tx runs hooks, in order, before fn.
// A failing hook aborts the transaction. Calls outside Tx pass straight through
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return inner
	}
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}
