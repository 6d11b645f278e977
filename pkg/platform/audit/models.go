package audit

import (
	"context"
	"errors"
	"maps"
	"time"
)

// TargetType names the aggregate an audit record is about.
type TargetType string

const (
	TargetSystem       TargetType = "system"
	TargetEvent        TargetType = "event"
	TargetRegistration TargetType = "registration"
)

// IsValid reports whether t is one of the known target types.
func (t TargetType) IsValid() bool {
	switch t {
	case TargetSystem, TargetEvent, TargetRegistration:
		return true
	}
	return false
}

// Record is one immutable audit entry, emitted once per successful mutation.
// Keep it transport-agnostic so stores and sinks can fan out.
type Record struct {
	Action     string
	RequestID  string
	TargetType TargetType
	TargetID   string
	ActorID    string
	Metadata   map[string]any
	Timestamp  time.Time
}

// Validate checks the fields every sink relies on.
func (r Record) Validate() error {
	if r.Action == "" {
		return errors.New("audit record requires Action")
	}
	if !r.TargetType.IsValid() {
		return errors.New("audit record requires a known TargetType")
	}
	return nil
}

// Clone returns a copy whose metadata map is not shared with r.
func (r Record) Clone() Record {
	out := r
	out.Metadata = maps.Clone(r.Metadata)
	return out
}

// Action names used by the delivery layers. Decorators fall back to
// "<target>.<operation>" when no action is supplied.
const (
	ActionUserRegistered       = "user.registered"
	ActionUserStatusChanged    = "user.status_changed"
	ActionRoleGranted          = "user.role_granted"
	ActionRoleRevoked          = "user.role_revoked"
	ActionEventCreated         = "event.created"
	ActionEventUpdated         = "event.updated"
	ActionEventPublished       = "event.published"
	ActionEventCancelled       = "event.cancelled"
	ActionInstructorAssigned   = "event.instructor_changed"
	ActionParticipantAdded     = "registration.registered"
	ActionParticipantRemoved   = "registration.removed"
	ActionParticipantCheckedIn = "registration.checked_in"
)

// Category classifies records for retention and routing.
type Category string

const (
	// CategoryCompliance covers changes to people and their participation.
	CategoryCompliance Category = "compliance"
	// CategoryOperations covers catalogue maintenance.
	CategoryOperations Category = "operations"
)

var actionCategories = map[string]Category{
	ActionUserRegistered:       CategoryCompliance,
	ActionUserStatusChanged:    CategoryCompliance,
	ActionRoleGranted:          CategoryCompliance,
	ActionRoleRevoked:          CategoryCompliance,
	ActionParticipantAdded:     CategoryCompliance,
	ActionParticipantRemoved:   CategoryCompliance,
	ActionParticipantCheckedIn: CategoryCompliance,
	ActionEventCreated:         CategoryOperations,
	ActionEventUpdated:         CategoryOperations,
	ActionEventPublished:       CategoryOperations,
	ActionEventCancelled:       CategoryOperations,
	ActionInstructorAssigned:   CategoryOperations,
}

// CategoryOf returns the category for r.Action.
// Unknown registration and system actions are compliance; the rest operations.
func CategoryOf(r Record) Category {
	if cat, ok := actionCategories[r.Action]; ok {
		return cat
	}
	if r.TargetType == TargetEvent {
		return CategoryOperations
	}
	return CategoryCompliance
}

// Store persists audit records.
type Store interface {
	Append(ctx context.Context, record Record) error
}

// Filter narrows a listing. Zero fields match everything.
type Filter struct {
	TargetType TargetType
	TargetID   string
	RequestID  string
	Limit      int
}

// Matches reports whether r satisfies f; Limit is ignored.
func (f Filter) Matches(r Record) bool {
	if f.TargetType != "" && r.TargetType != f.TargetType {
		return false
	}
	if f.TargetID != "" && r.TargetID != f.TargetID {
		return false
	}
	if f.RequestID != "" && r.RequestID != f.RequestID {
		return false
	}
	return true
}
