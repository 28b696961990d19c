package handler

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildItemQuery_Defaults(t *testing.T) {
	q, err := buildItemQuery(7, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), q.UserID)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Empty(t, q.Category)
	assert.Empty(t, q.Label)
	assert.Empty(t, q.Priority)
	assert.Nil(t, q.Completed)
	assert.Nil(t, q.DeadlineBefore)
	assert.Nil(t, q.DeadlineAfter)
}

func TestBuildItemQuery_OwnershipAlwaysSet(t *testing.T) {
	// No parameter combination may produce a query without the caller's ID.
	vals := url.Values{}
	vals.Set("category", "work")
	vals.Set("completed", "true")
	vals.Set("page", "3")
	q, err := buildItemQuery(42, vals)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), q.UserID)
}

func TestBuildItemQuery_Pagination(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 10},
		{"0", "", 1, 10},
		{"-5", "", 1, 10},
		{"3", "25", 3, 25},
		{"1", "0", 1, 1},
		{"1", "-1", 1, 1},
		{"1", "100", 1, 100},
		{"1", "1000", 1, 100},
	}
	for _, tc := range cases {
		vals := url.Values{}
		if tc.page != "" {
			vals.Set("page", tc.page)
		}
		if tc.limit != "" {
			vals.Set("limit", tc.limit)
		}
		q, err := buildItemQuery(1, vals)
		require.NoError(t, err, "page=%s limit=%s", tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, q.Page, "page=%s", tc.page)
		assert.Equal(t, tc.wantLimit, q.PageSize, "limit=%s", tc.limit)
	}
}

func TestBuildItemQuery_Filters(t *testing.T) {
	vals := url.Values{}
	vals.Set("category", "Work")
	vals.Set("label", "urgent")
	vals.Set("priority", "HIGH")
	vals.Set("completed", "false")
	vals.Set("deadlineAfter", "2026-03-01")
	vals.Set("deadlineBefore", "2026-03-31")

	q, err := buildItemQuery(1, vals)
	require.NoError(t, err)
	assert.Equal(t, "Work", q.Category)
	assert.Equal(t, "urgent", q.Label)
	assert.Equal(t, "high", q.Priority)
	require.NotNil(t, q.Completed)
	assert.False(t, *q.Completed)

	// Both bounds survive side by side as one range; neither overwrites
	// the other.
	require.NotNil(t, q.DeadlineAfter)
	require.NotNil(t, q.DeadlineBefore)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *q.DeadlineAfter)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *q.DeadlineBefore)
}

func TestBuildItemQuery_RFC3339Deadline(t *testing.T) {
	vals := url.Values{}
	vals.Set("deadlineBefore", "2026-03-31T12:30:00Z")
	q, err := buildItemQuery(1, vals)
	require.NoError(t, err)
	require.NotNil(t, q.DeadlineBefore)
	assert.Equal(t, time.Date(2026, 3, 31, 12, 30, 0, 0, time.UTC), *q.DeadlineBefore)
}

func TestBuildItemQuery_MalformedValuesError(t *testing.T) {
	cases := map[string]url.Values{
		"bad completed":      {"completed": {"maybe"}},
		"bad priority":       {"priority": {"urgent"}},
		"bad date":           {"deadlineBefore": {"next tuesday"}},
		"bad after date":     {"deadlineAfter": {"31-03-2026"}},
		"non-numeric page":   {"page": {"one"}},
		"non-numeric limit":  {"limit": {"ten"}},
	}
	for name, vals := range cases {
		_, err := buildItemQuery(1, vals)
		// Malformed input is an error for the caller, never a silent
		// match-all filter.
		assert.Error(t, err, name)
	}
}
