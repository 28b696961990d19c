package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("INSERT INTO items").
		WithArgs(uint64(7), "buy milk", "", "", "", PriorityMedium, nil, false).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("FROM items WHERE id = ?").
		WithArgs(uint64(3)).
		WillReturnRows(itemRows(Item{
			ID: 3, UserID: 7, Item: "buy milk", Priority: PriorityMedium,
			CreatedAt: now, UpdatedAt: now,
		}))

	repo := NewItemRepo(db)
	it := Item{UserID: 7, Item: "buy milk", Priority: PriorityMedium}
	require.NoError(t, repo.Create(context.Background(), &it))
	assert.Equal(t, uint64(3), it.ID)
	assert.False(t, it.Completed)
	assert.Equal(t, PriorityMedium, it.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepo_GetByIDAndOwner_ForeignItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The row exists but belongs to user 7; user 8's scoped lookup matches
	// nothing, and the caller cannot tell absence from foreign ownership.
	mock.ExpectQuery(`FROM items WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(3), uint64(8)).
		WillReturnRows(itemRows())

	repo := NewItemRepo(db)
	_, err = repo.GetByIDAndOwner(context.Background(), 3, 8)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepo_SetCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`UPDATE items SET completed = \? WHERE id = \? AND user_id = \?`).
		WithArgs(true, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM items WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(itemRows(Item{
			ID: 3, UserID: 7, Item: "buy milk", Priority: PriorityMedium,
			Completed: true, CreatedAt: now, UpdatedAt: now,
		}))

	repo := NewItemRepo(db)
	it, err := repo.SetCompleted(context.Background(), 3, 7, true)
	require.NoError(t, err)
	assert.True(t, it.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM items WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewItemRepo(db)
	assert.NoError(t, repo.Delete(context.Background(), 3, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepo_Delete_NotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM items WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(3), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewItemRepo(db)
	assert.ErrorIs(t, repo.Delete(context.Background(), 3, 8), ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
