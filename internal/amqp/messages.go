package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names the write that produced an ExpenseEvent.
type EventType string

const (
	ExpenseCreated EventType = "expense.created"
	ExpenseUpdated EventType = "expense.updated"
	ExpenseDeleted EventType = "expense.deleted"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted:
		return true
	}
	return false
}

// ExpenseEvent is a lightweight notification of a ledger change.
// Consumers reload the owner's ledger instead of trusting a payload.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	UserID    int64     `json:"user_id"`
	ExpenseID int64     `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(t EventType, userID, expenseID int64) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      t,
		UserID:    userID,
		ExpenseID: expenseID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes and validates an event.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var e ExpenseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID <= 0 {
		return nil, fmt.Errorf("missing user_id")
	}
	return &e, nil
}
