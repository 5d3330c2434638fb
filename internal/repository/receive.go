package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Evgen-Mutagen/finances/internal/model"
)

type ReceiveRepository interface {
	Create(ctx context.Context, receive *model.Receive) error
	GetByID(ctx context.Context, id string) (*model.Receive, error)
	ListByUserAndDate(ctx context.Context, userID, date string) ([]*model.Receive, error)
	ListAll(ctx context.Context) ([]*model.Receive, error)
	Update(ctx context.Context, receive *model.Receive) error
	Delete(ctx context.Context, id string) error
}

type receiveRepository struct {
	db DBTX
}

func NewReceiveRepository(db DBTX) ReceiveRepository {
	return &receiveRepository{db: db}
}

const receiveSelect = `SELECT r.id, r.description, r.value, r.type, r.date, r.user_id,
                  r.created_at, r.updated_at, u.name, u.email
              FROM receives r
              JOIN users u ON u.id = r.user_id`

func (r *receiveRepository) Create(ctx context.Context, receive *model.Receive) error {
	query := `INSERT INTO receives (id, description, value, type, date, user_id)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		receive.ID,
		receive.Description,
		receive.Value,
		string(receive.Type),
		receive.Date,
		receive.UserID,
	).Scan(&receive.CreatedAt, &receive.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create receive: %w", mapError(err))
	}
	return nil
}

func (r *receiveRepository) GetByID(ctx context.Context, id string) (*model.Receive, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	rows, err := r.db.QueryContext(ctx, receiveSelect+` WHERE r.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	receives, err := scanReceives(rows)
	if err != nil {
		return nil, err
	}
	if len(receives) == 0 {
		return nil, ErrNotFound
	}
	return receives[0], nil
}

func (r *receiveRepository) ListByUserAndDate(ctx context.Context, userID, date string) ([]*model.Receive, error) {
	if !validID(userID) {
		return []*model.Receive{}, nil
	}

	query := receiveSelect + `
              WHERE r.user_id = $1 AND r.date = $2
              ORDER BY r.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanReceives(rows)
}

func (r *receiveRepository) ListAll(ctx context.Context) ([]*model.Receive, error) {
	rows, err := r.db.QueryContext(ctx, receiveSelect+`
              ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanReceives(rows)
}

func (r *receiveRepository) Update(ctx context.Context, receive *model.Receive) error {
	query := `UPDATE receives
              SET description = $1, value = $2, type = $3, date = $4, updated_at = now()
              WHERE id = $5
              RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		receive.Description,
		receive.Value,
		string(receive.Type),
		receive.Date,
		receive.ID,
	).Scan(&receive.UpdatedAt)
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update receive: %w", err)
	}
	return nil
}

func (r *receiveRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM receives WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receive: %w", err)
	}
	return expectOneRow(res)
}

func scanReceives(rows *sql.Rows) ([]*model.Receive, error) {
	defer rows.Close()

	receives := make([]*model.Receive, 0)
	for rows.Next() {
		var (
			rec   model.Receive
			owner model.UserRef
			typ   string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Description,
			&rec.Value,
			&typ,
			&rec.Date,
			&rec.UserID,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&owner.Name,
			&owner.Email,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		rec.Type = model.ReceiveType(typ)
		owner.ID = rec.UserID
		rec.User = &owner
		receives = append(receives, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return receives, nil
}
