package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	custom_error "itinventory/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
)

const Dialect = "postgres"

type Repository struct {
	DB            *sql.DB
	GoquDBWrapper *goqu.Database
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:            db,
		GoquDBWrapper: goqu.New(Dialect, db),
	}
}

// Executor is satisfied by both *goqu.Database and *goqu.TxDatabase, so
// repository methods can run inside or outside a transaction.
type Executor interface {
	From(from ...interface{}) *goqu.SelectDataset
	Select(cols ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

// Transactor runs fn inside one unit of work.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx Executor) error) error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx Executor) error) error {
	return WithTransaction(ctx, r.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		return fn(tx)
	})
}

// Executor returns tx when one is given, the plain database otherwise.
func (r *Repository) Executor(tx Executor) Executor {
	if tx != nil {
		return tx
	}
	return r.GoquDBWrapper
}

func WithTransaction(ctx context.Context, db *goqu.Database, fn func(tx *goqu.TxDatabase) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return
}

// ExistsByID reports whether a row with the given primary key exists in table.
func (r *Repository) ExistsByID(ctx context.Context, table string, id int) (bool, error) {
	var count int
	_, err := r.GoquDBWrapper.From(table).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"id": id}).
		Executor().ScanValContext(ctx, &count)
	if err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return count > 0, nil
}

// WrapError translates driver errors into the custom error taxonomy.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "23505", "23503":
			return custom_error.WrapDBError(message, string(pqErr.Code))
		}
	}

	return fmt.Errorf("%s: %w", message, err)
}
