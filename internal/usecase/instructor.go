package usecase

import (
	"context"
	"strings"

	"atelier/internal/lifecycle"
	"atelier/internal/models"
	id "atelier/pkg/domain"
)

type InstructorTransitionInput struct {
	NextState    string
	InstructorID *string
}

// TransitionInstructorAssignment is the pure transition over the current
// assignment. See lifecycle.TransitionInstructorAssignment for the guards.
func TransitionInstructorAssignment(current models.InstructorAssignment, in InstructorTransitionInput) (models.InstructorAssignment, error) {
	next, err := models.ParseInstructorState(in.NextState)
	if err != nil {
		return models.InstructorAssignment{}, err
	}
	var instructorID *id.InstructorID
	if in.InstructorID != nil {
		v := id.InstructorID(*in.InstructorID)
		instructorID = &v
	}
	return lifecycle.TransitionInstructorAssignment(current, next, instructorID)
}

type AssignEventInstructorInput struct {
	EventSlug      string
	NextState      string
	InstructorID   *string
	InstructorName string
}

// AssignEventInstructor moves the event's instructor slot and persists it.
// The display name is cleared on TBA. A no-op transition writes nothing.
func AssignEventInstructor(ctx context.Context, d Deps, in AssignEventInstructorInput) (*EventResult, error) {
	event, err := findEvent(ctx, d, in.EventSlug)
	if err != nil {
		return nil, err
	}
	current := event.Assignment()
	next, err := TransitionInstructorAssignment(current, InstructorTransitionInput{
		NextState:    in.NextState,
		InstructorID: in.InstructorID,
	})
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.InstructorName)
	if next.State == current.State && (next.State == models.InstructorTBA || name == "" || name == event.InstructorName) {
		return &EventResult{Event: event, Idempotent: true}, nil
	}

	updated := event.Clone()
	updated.InstructorState = next.State
	updated.InstructorID = next.InstructorID
	switch {
	case next.State == models.InstructorTBA:
		updated.InstructorName = ""
	case name != "":
		updated.InstructorName = name
	}
	updated.UpdatedAt = d.now()
	if err := d.Events.Update(ctx, updated); err != nil {
		return nil, storeError(err, "event")
	}
	return &EventResult{Event: updated}, nil
}
