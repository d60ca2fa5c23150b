package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx, so repositories run the
// same queries inside or outside a transaction.
type DBTX interface {
	sqlx.ExtContext
}

type contextKey string

// TransactionContextKey carries the active *sqlx.Tx through a context.
const TransactionContextKey contextKey = "tx"

// GetExecutor returns the transaction from ctx when one is active,
// otherwise the plain database handle.
func GetExecutor(ctx context.Context, db DBTX) DBTX {
	if tx := ctx.Value(TransactionContextKey); tx != nil {
		if sqlxTx, ok := tx.(*sqlx.Tx); ok {
			return sqlxTx
		}
	}
	return db
}
