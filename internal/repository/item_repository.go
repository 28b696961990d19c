// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Item model and repository methods for the CRUD
// operations.  Every query that touches an existing row is scoped by both
// the item id and the owning user id, so a row belonging to someone else is
// indistinguishable from a row that does not exist.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Valid values for Item.Priority.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Item represents a task entry persisted in the database.  The struct
// carries json tags because handlers return these records directly.
type Item struct {
	ID        uint64     `json:"id"`        // items.id, auto-incremented primary key
	UserID    uint64     `json:"userId"`    // items.user_id, the owning user
	Item      string     `json:"item"`      // items.item, the task text
	Notes     string     `json:"notes"`     // items.notes, free-form notes
	Category  string     `json:"category"`  // items.category
	Label     string     `json:"label"`     // items.label
	Priority  string     `json:"priority"`  // items.priority, one of low/medium/high
	Deadline  *time.Time `json:"deadline"`  // items.deadline, nullable
	Completed bool       `json:"completed"` // items.completed
	CreatedAt time.Time  `json:"createdAt"` // items.created_at
	UpdatedAt time.Time  `json:"updatedAt"` // items.updated_at
}

// ErrItemNotFound is returned when an item cannot be found under the given
// owner.  Callers must not learn whether the row exists for someone else.
var ErrItemNotFound = errors.New("item not found")

// ItemRepo encapsulates all database queries related to items.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo constructs an ItemRepo with the provided DB handle.  This
// allows dependency injection of the database in tests and at startup.
func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = "id, user_id, item, notes, category, label, priority, deadline, completed, created_at, updated_at"

func scanItem(row *sql.Row, it *Item) error {
	return row.Scan(&it.ID, &it.UserID, &it.Item, &it.Notes, &it.Category, &it.Label,
		&it.Priority, &it.Deadline, &it.Completed, &it.CreatedAt, &it.UpdatedAt)
}

// Create inserts a new item.  On success the item's ID is populated with
// the auto-generated value and a follow-up SELECT fills the fields the
// database defaulted (timestamps).
func (r *ItemRepo) Create(ctx context.Context, it *Item) error {
	const qInsert = `INSERT INTO items (user_id, item, notes, category, label, priority, deadline, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		it.UserID, it.Item, it.Notes, it.Category, it.Label, it.Priority, it.Deadline, it.Completed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)

	const qSelect = "SELECT " + itemColumns + " FROM items WHERE id = ?"
	return scanItem(r.db.QueryRowContext(ctx, qSelect, it.ID), it)
}

// GetByIDAndOwner fetches an item by id but only if it belongs to the given
// user.  A row owned by someone else yields ErrItemNotFound.
func (r *ItemRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*Item, error) {
	const q = "SELECT " + itemColumns + " FROM items WHERE id = ? AND user_id = ?"
	var it Item
	if err := scanItem(r.db.QueryRowContext(ctx, q, id, userID), &it); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Update rewrites the mutable fields of an item owned by it.UserID.
func (r *ItemRepo) Update(ctx context.Context, it *Item) error {
	const q = `UPDATE items
		SET item = ?, notes = ?, category = ?, label = ?, priority = ?, deadline = ?, completed = ?
		WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, q,
		it.Item, it.Notes, it.Category, it.Label, it.Priority, it.Deadline, it.Completed,
		it.ID, it.UserID)
	if err != nil {
		return err
	}
	const qSelect = "SELECT " + itemColumns + " FROM items WHERE id = ? AND user_id = ?"
	if err := scanItem(r.db.QueryRowContext(ctx, qSelect, it.ID, it.UserID), it); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

// SetCompleted flips the completion flag of an item owned by userID and
// returns the updated record.
func (r *ItemRepo) SetCompleted(ctx context.Context, id, userID uint64, completed bool) (*Item, error) {
	const q = "UPDATE items SET completed = ? WHERE id = ? AND user_id = ?"
	if _, err := r.db.ExecContext(ctx, q, completed, id, userID); err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, id, userID)
}

// Delete removes an item owned by userID.  Zero affected rows mean the
// item is absent or foreign, reported identically as ErrItemNotFound.
func (r *ItemRepo) Delete(ctx context.Context, id, userID uint64) error {
	const q = "DELETE FROM items WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}
