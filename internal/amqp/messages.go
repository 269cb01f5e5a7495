package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a change to the budget.
type EventType string

const (
	EntryCreated    EventType = "entry.created"
	EntryUpdated    EventType = "entry.updated"
	EntryDeleted    EventType = "entry.deleted"
	CategoryDeleted EventType = "category.deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case EntryCreated, EntryUpdated, EntryDeleted, CategoryDeleted:
		return true
	}
	return false
}

// BudgetEvent announces a change. It carries ids only; consumers load the
// current row from the database when they need it.
type BudgetEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	EntryID    int64     `json:"entry_id,omitempty"`
	CategoryID int64     `json:"category_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewEntryEvent(t EventType, entryID, categoryID int64) *BudgetEvent {
	return &BudgetEvent{
		ID:         uuid.NewString(),
		Type:       t,
		EntryID:    entryID,
		CategoryID: categoryID,
		Timestamp:  time.Now().UTC(),
	}
}

func NewCategoryEvent(t EventType, categoryID int64) *BudgetEvent {
	return NewEntryEvent(t, 0, categoryID)
}

func (m *BudgetEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetEventFromJSON decodes and checks an event body.
func BudgetEventFromJSON(data []byte) (*BudgetEvent, error) {
	var msg BudgetEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("event id: %w", err)
	}
	return &msg, nil
}
