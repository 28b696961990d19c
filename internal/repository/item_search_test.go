package repository

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemRows(items ...Item) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "item", "notes", "category", "label",
		"priority", "deadline", "completed", "created_at", "updated_at",
	})
	for _, it := range items {
		var deadline any
		if it.Deadline != nil {
			deadline = *it.Deadline
		}
		rows.AddRow(it.ID, it.UserID, it.Item, it.Notes, it.Category, it.Label,
			it.Priority, deadline, it.Completed, it.CreatedAt, it.UpdatedAt)
	}
	return rows
}

func TestItemRepo_Search_OwnershipOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items WHERE user_id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`FROM items WHERE user_id = \? ORDER BY created_at DESC`).
		WithArgs(uint64(7), 10, 0).
		WillReturnRows(itemRows(
			Item{ID: 2, UserID: 7, Item: "walk dog", Priority: PriorityMedium, CreatedAt: now, UpdatedAt: now},
			Item{ID: 1, UserID: 7, Item: "buy milk", Priority: PriorityHigh, CreatedAt: now, UpdatedAt: now},
		))

	repo := NewItemRepo(db)
	items, total, err := repo.Search(context.Background(), ItemSearchQuery{UserID: 7, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "walk dog", items[0].Item)
	assert.Nil(t, items[0].Deadline)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepo_Search_FiltersAndTheOwnershipClause(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	completed := false
	after := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	q := ItemSearchQuery{
		UserID:         7,
		Category:       "Work",
		Label:          "Urgent",
		Priority:       PriorityHigh,
		Completed:      &completed,
		DeadlineAfter:  &after,
		DeadlineBefore: &before,
		Page:           2,
		PageSize:       20,
	}

	cond := `WHERE user_id = \? AND LOWER\(category\) LIKE \? AND LOWER\(label\) LIKE \? ` +
		`AND priority = \? AND completed = \? AND deadline <= \? AND deadline >= \?`
	filterArgs := []driver.Value{uint64(7), "%work%", "%urgent%", PriorityHigh, false, before, after}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items ` + cond).
		WithArgs(filterArgs...).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery(cond+` ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(append(filterArgs, 20, 20)...).
		WillReturnRows(itemRows())

	repo := NewItemRepo(db)
	items, total, err := repo.Search(context.Background(), q)
	require.NoError(t, err)
	// The count uses the same condition unbounded, so totals are
	// independent of the requested page.
	assert.Equal(t, int64(41), total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
