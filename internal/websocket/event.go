package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeTransfer    EntityType = "transfer"
	EntityTypeAccount     EntityType = "account"
	EntityTypeBook        EntityType = "book"
	EntityTypeCategory    EntityType = "category"
	EntityTypeTag         EntityType = "tag"
	EntityTypePerson      EntityType = "person"
	EntityTypeBudget      EntityType = "budget"
	EntityTypeMember      EntityType = "member"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transaction"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionUpdated creates a transaction.updated event
func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// TransferCreated creates a transfer.created event carrying both legs
func TransferCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransfer, payload)
}

// TransferDeleted creates a transfer.deleted event
func TransferDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransfer, payload)
}

// AccountCreated creates an account.created event
func AccountCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeAccount, payload)
}

// AccountUpdated creates an account.updated event
func AccountUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAccount, payload)
}

// AccountDeleted creates an account.deleted event
func AccountDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeAccount, payload)
}

// BookUpdated creates a book.updated event
func BookUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBook, payload)
}

// BookDeleted creates a book.deleted event
func BookDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBook, payload)
}

// CategoryCreated creates a category.created event
func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

// CategoryUpdated creates a category.updated event
func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

// TagCreated creates a tag.created event
func TagCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTag, payload)
}

// TagUpdated creates a tag.updated event
func TagUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTag, payload)
}

// TagDeleted creates a tag.deleted event
func TagDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTag, payload)
}

// PersonCreated creates a person.created event
func PersonCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePerson, payload)
}

// PersonUpdated creates a person.updated event
func PersonUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePerson, payload)
}

// PersonDeleted creates a person.deleted event
func PersonDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePerson, payload)
}

// BudgetCreated creates a budget.created event
func BudgetCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// BudgetDeleted creates a budget.deleted event
func BudgetDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// MemberAdded creates a member.created event
func MemberAdded(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeMember, payload)
}

// MemberUpdated creates a member.updated event
func MemberUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeMember, payload)
}

// MemberRemoved creates a member.deleted event
func MemberRemoved(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeMember, payload)
}
