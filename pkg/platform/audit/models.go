package audit

import (
	"context"
	"time"

	"jobboard/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers account and application lifecycle changes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers failed logins and access violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity such as token issuance.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    domain.UserID `json:"userId,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Action    string        `json:"action"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	// ActorID is set when an admin acts on another user's resource.
	ActorID domain.UserID `json:"actorId,omitempty"`
}

type AuditEvent string

const (
	EventUserRegistered           AuditEvent = "user_registered"
	EventLoginFailed              AuditEvent = "login_failed"
	EventTokenIssued              AuditEvent = "token_issued"
	EventApplicationSubmitted     AuditEvent = "application_submitted"
	EventApplicationStatusChanged AuditEvent = "application_status_changed"
	EventJobRoleCreated           AuditEvent = "job_role_created"
	EventJobRoleUpdated           AuditEvent = "job_role_updated"
	EventJobRoleDeleted           AuditEvent = "job_role_deleted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered:           CategoryCompliance,
	EventApplicationSubmitted:     CategoryCompliance,
	EventApplicationStatusChanged: CategoryCompliance,
	EventJobRoleCreated:           CategoryCompliance,
	EventJobRoleUpdated:           CategoryCompliance,
	EventJobRoleDeleted:           CategoryCompliance,

	EventLoginFailed: CategorySecurity,

	EventTokenIssued: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Appender is the write side of an audit sink.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Store is a queryable audit sink.
type Store interface {
	Appender
	ListByUser(ctx context.Context, userID domain.UserID) ([]Event, error)
}

// Emitter is what services depend on. Implementations must not block the
// request on a slow sink; failures are the emitter's to log.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
