package repositories

import "context"

// TxManager runs a function inside a single atomic unit of work. Every
// repository call made with the context passed to fn joins that transaction;
// if fn returns an error the transaction is rolled back and nothing is
// visible to other readers.
//
// WithinSerializableTx is used by operations that read a whole row set before
// rewriting it (the default-currency change) and therefore need serializable
// isolation on stores that support it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	WithinSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error
}
