package usecase

import (
	"strings"
	"time"

	"atelier/internal/lifecycle"
	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

type FollowUpInput struct {
	ID         id.FollowUpID
	Subject    string
	EventID    *id.EventID
	AssigneeID *id.UserID
	DueAt      *time.Time
}

// OpenFollowUp creates an OPEN follow-up.
func OpenFollowUp(in FollowUpInput, now time.Time) (models.FollowUp, error) {
	if in.ID.IsNil() {
		return models.FollowUp{}, dErrors.InvalidInput("follow_up_id_required")
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return models.FollowUp{}, dErrors.InvalidInput("follow_up_subject_required")
	}
	return models.FollowUp{
		ID:         in.ID,
		Subject:    subject,
		EventID:    in.EventID,
		AssigneeID: in.AssigneeID,
		DueAt:      in.DueAt,
		Status:     models.FollowUpOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// FollowUpFromOutcome opens the follow-up an engagement outcome asks for.
// Outcomes that need none return ok=false.
func FollowUpFromOutcome(followUpID id.FollowUpID, eventID id.EventID, outcome models.EngagementOutcome, now time.Time) (models.FollowUp, bool, error) {
	if !outcome.FollowUpRequired {
		return models.FollowUp{}, false, nil
	}
	f, err := OpenFollowUp(FollowUpInput{
		ID:      followUpID,
		Subject: "Follow up on " + strings.ToLower(strings.ReplaceAll(string(outcome.Outcome), "_", " ")) + " engagement",
		EventID: &eventID,
		DueAt:   outcome.FollowUpDueAt,
	}, now)
	if err != nil {
		return models.FollowUp{}, false, err
	}
	return f, true, nil
}

type FollowUpTransitionInput struct {
	Next   models.FollowUpStatus
	Reason string
}

// TransitionFollowUp moves a follow-up. BLOCKED needs a reason; leaving
// BLOCKED clears it; DONE stamps CompletedAt.
func TransitionFollowUp(f models.FollowUp, in FollowUpTransitionInput, now time.Time) (models.FollowUp, error) {
	to, err := lifecycle.FollowUp.Transition(f.Status, in.Next)
	if err != nil {
		return models.FollowUp{}, err
	}
	reason := strings.TrimSpace(in.Reason)
	if to == models.FollowUpBlocked && reason == "" && (f.Status != models.FollowUpBlocked || f.BlockedReason == "") {
		return models.FollowUp{}, dErrors.InvalidInput("follow_up_block_reason_required")
	}
	if to == f.Status {
		if to == models.FollowUpBlocked && reason != "" && reason != f.BlockedReason {
			f.BlockedReason = reason
			f.UpdatedAt = now
		}
		return f, nil
	}

	switch to {
	case models.FollowUpBlocked:
		f.BlockedReason = reason
	case models.FollowUpDone:
		stamp := now
		f.CompletedAt = &stamp
		f.BlockedReason = ""
	default:
		f.BlockedReason = ""
	}
	f.Status = to
	f.UpdatedAt = now
	return f, nil
}
