package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Receives() ReceiveRepository
}

// Store is the storage boundary used by the services. Repositories returned
// by Users and Receives run in autocommit mode; WithTx runs fn against
// repositories bound to a single transaction and commits only if fn
// returns nil.
type Store interface {
	Repositories
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Close() error
}

type sqlRepositories struct {
	db DBTX
}

func (r sqlRepositories) Users() UserRepository {
	return NewUserRepository(r.db)
}

func (r sqlRepositories) Receives() ReceiveRepository {
	return NewReceiveRepository(r.db)
}

// mapError turns driver level failures into repository sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return ErrDuplicate
		case "foreign_key_violation":
			return ErrNotFound
		}
	}
	return err
}

// validID reports whether id can be a primary key at all. Ids that do not
// parse are treated as missing rows instead of being sent to postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
