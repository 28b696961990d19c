package repository

import (
	"context"
	"strings"
	"time"
)

// ItemSearchQuery defines filters & pagination for listing items.  UserID
// is mandatory: the ownership clause is always the first condition of the
// generated WHERE and can never be omitted by any filter combination.
type ItemSearchQuery struct {
	UserID         uint64     // owning user, never zero
	Category       string     // case-insensitive substring match
	Label          string     // case-insensitive substring match
	Priority       string     // exact match, one of low/medium/high
	Completed      *bool      // exact match when set
	DeadlineBefore *time.Time // inclusive upper bound when set
	DeadlineAfter  *time.Time // inclusive lower bound when set
	Page           int
	PageSize       int
}

// Search returns one page of the caller's items plus the total count of
// the full matching set.  The count query uses the identical condition,
// unbounded, so meta totals stay correct regardless of page and limit.
// Both deadline bounds are independent clauses; supplying both forms a
// range.
func (r *ItemRepo) Search(ctx context.Context, q ItemSearchQuery) ([]Item, int64, error) {
	where := []string{"user_id = ?"}
	args := []any{q.UserID}

	if q.Category != "" {
		where = append(where, "LOWER(category) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Category)+"%")
	}
	if q.Label != "" {
		where = append(where, "LOWER(label) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Label)+"%")
	}
	if q.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, q.Priority)
	}
	if q.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *q.Completed)
	}
	if q.DeadlineBefore != nil {
		where = append(where, "deadline <= ?")
		args = append(args, *q.DeadlineBefore)
	}
	if q.DeadlineAfter != nil {
		where = append(where, "deadline >= ?")
		args = append(args, *q.DeadlineAfter)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := "SELECT COUNT(*) FROM items WHERE " + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := "SELECT " + itemColumns + " FROM items WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Item, 0, limit)
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID,
			&it.UserID,
			&it.Item,
			&it.Notes,
			&it.Category,
			&it.Label,
			&it.Priority,
			&it.Deadline,
			&it.Completed,
			&it.CreatedAt,
			&it.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
