package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/todo-list-api/internal/repository"
)

// Bounds applied to the limit query parameter.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// buildItemQuery translates raw query parameters plus the caller identity
// into a validated search query.  It is a pure function: no request state,
// no defaults pulled from anywhere else.  The ownership constraint is set
// unconditionally, so no combination of parameters can widen the result
// set beyond the caller's own items.  Malformed values are reported as
// errors instead of being dropped into a match-all filter.
func buildItemQuery(userID uint64, vals url.Values) (repository.ItemSearchQuery, error) {
	q := repository.ItemSearchQuery{
		UserID:   userID,
		Page:     defaultPage,
		PageSize: defaultLimit,
	}

	if v := vals.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("invalid page: %q", v)
		}
		if n > 1 {
			q.Page = n
		}
	}
	if v := vals.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("invalid limit: %q", v)
		}
		if n < 1 {
			n = 1
		}
		if n > maxLimit {
			n = maxLimit
		}
		q.PageSize = n
	}

	q.Category = strings.TrimSpace(vals.Get("category"))
	q.Label = strings.TrimSpace(vals.Get("label"))

	if v := strings.TrimSpace(vals.Get("priority")); v != "" {
		p := strings.ToLower(v)
		if !validPriority(p) {
			return q, fmt.Errorf("invalid priority: %q", v)
		}
		q.Priority = p
	}

	if v := vals.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("invalid completed: %q", v)
		}
		q.Completed = &b
	}

	if v := vals.Get("deadlineBefore"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return q, fmt.Errorf("invalid deadlineBefore: %q", v)
		}
		q.DeadlineBefore = &t
	}
	if v := vals.Get("deadlineAfter"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return q, fmt.Errorf("invalid deadlineAfter: %q", v)
		}
		q.DeadlineAfter = &t
	}

	return q, nil
}

func validPriority(p string) bool {
	switch p {
	case repository.PriorityLow, repository.PriorityMedium, repository.PriorityHigh:
		return true
	}
	return false
}

// parseDate accepts a plain date or a full RFC3339 timestamp.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
