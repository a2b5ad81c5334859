package aggregates

import (
	"context"

	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
)

// TxRunner draws the transaction boundary for multi-step writes: everything
// fn does through dbc commits together or not at all.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// InTxResult runs fn inside a transaction and returns its result.
func InTxResult[T any](ctx context.Context, runner TxRunner, fn func(dbc dbctx.Context) (T, error)) (T, error) {
	var out T
	err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		out, err = fn(dbc)
		return err
	})
	return out, err
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r == nil || r.db == nil {
		return faults.New(faults.CodeInternal, "aggregates.tx", "transaction runner has nil db", nil)
	}
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.WithTx(ctx, tx))
	})
}
