// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions recorded in ItemEvent.Action.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionCompleted = "completed"
	ActionDeleted   = "deleted"
)

// ItemEvent is published whenever an item changes.  It contains enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type ItemEvent struct {
	Action    string `json:"action"`
	ItemID    uint64 `json:"item_id"`
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	Item      string `json:"item"`
	Completed bool   `json:"completed"`
	At        string `json:"at"`
}
