package events

import (
	"time"

	"github.com/spec-kit/roster-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMemberCreated   EventType = "member_created"
	EventMemberUpdated   EventType = "member_updated"
	EventMemberDeleted   EventType = "member_deleted"
	EventGroupDeleted    EventType = "group_deleted"
	EventImportApplied   EventType = "import_applied"
	EventImportDiscarded EventType = "import_discarded"
)

// Event represents a domain event emitted by services. Actor is the asserted
// role that triggered the change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     domain.Role `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MemberChangedPayload payload for member create/update/delete.
type MemberChangedPayload struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

// GroupDeletedPayload payload.
type GroupDeletedPayload struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
}

// ImportAppliedPayload payload.
type ImportAppliedPayload struct {
	ImportID string `json:"import_id"`
	FileName string `json:"file_name,omitempty"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Errors   int    `json:"errors"`
}
