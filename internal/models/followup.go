package models

import (
	"time"

	id "atelier/pkg/domain"
)

type FollowUpStatus string

const (
	FollowUpOpen       FollowUpStatus = "OPEN"
	FollowUpInProgress FollowUpStatus = "IN_PROGRESS"
	FollowUpBlocked    FollowUpStatus = "BLOCKED"
	FollowUpDone       FollowUpStatus = "DONE"
)

var followUpStatuses = []FollowUpStatus{FollowUpOpen, FollowUpInProgress, FollowUpBlocked, FollowUpDone}

func ParseFollowUpStatus(s string) (FollowUpStatus, error) {
	return parseEnum("follow_up", s, followUpStatuses)
}

// FollowUp is an action item raised after an engagement.
// BlockedReason is set only while Status is BLOCKED.
type FollowUp struct {
	ID            id.FollowUpID  `json:"id"`
	Subject       string         `json:"subject"`
	EventID       *id.EventID    `json:"event_id,omitempty"`
	AssigneeID    *id.UserID     `json:"assignee_id,omitempty"`
	Status        FollowUpStatus `json:"status"`
	BlockedReason string         `json:"blocked_reason,omitempty"`
	DueAt         *time.Time     `json:"due_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// EngagementOutcomeKind is the canonical result of a delivered engagement.
type EngagementOutcomeKind string

const (
	OutcomeCompleted   EngagementOutcomeKind = "COMPLETED"
	OutcomePartial     EngagementOutcomeKind = "PARTIAL"
	OutcomeNoShow      EngagementOutcomeKind = "NO_SHOW"
	OutcomeRescheduled EngagementOutcomeKind = "RESCHEDULED"
	OutcomeCancelled   EngagementOutcomeKind = "CANCELLED"
)

// EngagementOutcome is a normalised outcome report.
type EngagementOutcome struct {
	Outcome          EngagementOutcomeKind `json:"outcome"`
	Notes            string                `json:"notes,omitempty"`
	OccurredAt       time.Time             `json:"occurred_at"`
	FollowUpRequired bool                  `json:"follow_up_required"`
	FollowUpDueAt    *time.Time            `json:"follow_up_due_at,omitempty"`
}
