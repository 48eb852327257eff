package repository

import (
	"context"
	"database/sql"
	"fmt"

	"questa-search/internal/domain"
	"questa-search/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// queryer is the subset of *sqlx.DB and *sqlx.Tx the question adapter runs on.
type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

type txKey struct{}

// executorFor returns the import transaction carried by ctx, falling back to db.
func executorFor(ctx context.Context, db *sqlx.DB) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// TransactionManagerAdapter runs bulk question writes (imports, seeding) in one sqlx transaction.
type TransactionManagerAdapter struct {
	db *sqlx.DB
}

func NewTransactionManagerAdapter(db *sqlx.DB) domain.TransactionManager {
	return &TransactionManagerAdapter{db: db}
}

// WithTransaction commits when fn returns nil. Errors and panics roll back.
// Nested calls reuse the outer transaction.
func (m *TransactionManagerAdapter) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin question transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Get().Error("Question transaction rollback failed", zap.Error(rbErr))
			if err != nil {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question transaction: %w", err)
	}
	committed = true
	return nil
}
