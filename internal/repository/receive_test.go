package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testReceiveID = "9a4d2e71-6b3f-4c8a-b1d0-3e5f7a9c2b48"

var receiveRowColumns = []string{
	"id", "description", "value", "type", "date", "user_id",
	"created_at", "updated_at", "name", "email",
}

func newMockReceives(t *testing.T) (ReceiveRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReceiveRepository(db), mock
}

func TestReceiveRepository_Create(t *testing.T) {
	repo, mock := newMockReceives(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO receives`).
		WithArgs(testReceiveID, "salary", sqlmock.AnyArg(), "income", "2024-05-01", testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	rec := &model.Receive{
		ID:          testReceiveID,
		Description: "salary",
		Value:       decimal.NewFromInt(100),
		Type:        model.ReceiveIncome,
		Date:        "2024-05-01",
		UserID:      testUserID,
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	require.Equal(t, now, rec.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiveRepository_CreateUnknownOwner(t *testing.T) {
	repo, mock := newMockReceives(t)

	mock.ExpectQuery(`INSERT INTO receives`).
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Create(context.Background(), &model.Receive{ID: testReceiveID, UserID: testUserID})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReceiveRepository_ListByUserAndDate(t *testing.T) {
	repo, mock := newMockReceives(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM receives r\s+JOIN users u ON u.id = r.user_id\s+WHERE r.user_id = \$1 AND r.date = \$2`).
		WithArgs(testUserID, "2024-05-01").
		WillReturnRows(sqlmock.NewRows(receiveRowColumns).
			AddRow(testReceiveID, "groceries", "40.00", "expense", "2024-05-01", testUserID, now, now, "Alice", "alice@example.com"))

	receives, err := repo.ListByUserAndDate(context.Background(), testUserID, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, receives, 1)

	rec := receives[0]
	require.Equal(t, model.ReceiveExpense, rec.Type)
	require.True(t, rec.Value.Equal(decimal.NewFromInt(40)))
	require.NotNil(t, rec.User)
	require.Equal(t, testUserID, rec.User.ID)
	require.Equal(t, "Alice", rec.User.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiveRepository_ListByMalformedUser(t *testing.T) {
	repo, mock := newMockReceives(t)

	receives, err := repo.ListByUserAndDate(context.Background(), "nope", "2024-05-01")
	require.NoError(t, err)
	require.Empty(t, receives)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiveRepository_ListAllEmpty(t *testing.T) {
	repo, mock := newMockReceives(t)

	mock.ExpectQuery(`FROM receives r`).
		WillReturnRows(sqlmock.NewRows(receiveRowColumns))

	receives, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, receives)
	require.Empty(t, receives)
}

func TestReceiveRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newMockReceives(t)

	mock.ExpectQuery(`WHERE r.id = \$1`).
		WithArgs(testReceiveID).
		WillReturnRows(sqlmock.NewRows(receiveRowColumns))

	_, err := repo.GetByID(context.Background(), testReceiveID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReceiveRepository_UpdateMissing(t *testing.T) {
	repo, mock := newMockReceives(t)

	mock.ExpectQuery(`UPDATE receives`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), &model.Receive{ID: testReceiveID, Type: model.ReceiveIncome})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReceiveRepository_DeleteMissing(t *testing.T) {
	repo, mock := newMockReceives(t)

	mock.ExpectExec(`DELETE FROM receives WHERE id = \$1`).
		WithArgs(testReceiveID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), testReceiveID)
	require.ErrorIs(t, err, ErrNotFound)
}
