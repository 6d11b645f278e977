package models

import (
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

type InstructorState string

const (
	InstructorTBA        InstructorState = "TBA"
	InstructorProposed   InstructorState = "PROPOSED"
	InstructorAssigned   InstructorState = "ASSIGNED"
	InstructorConfirmed  InstructorState = "CONFIRMED"
	InstructorReassigned InstructorState = "REASSIGNED"
)

var instructorStates = []InstructorState{
	InstructorTBA, InstructorProposed, InstructorAssigned, InstructorConfirmed, InstructorReassigned,
}

func ParseInstructorState(s string) (InstructorState, error) {
	return parseEnum("instructor_assignment", s, instructorStates)
}

// InstructorAssignment is the per-event instructor slot.
// TBA always carries a nil instructor; every other state carries one.
type InstructorAssignment struct {
	State        InstructorState  `json:"state"`
	InstructorID *id.InstructorID `json:"instructor_id,omitempty"`
}

// Validate checks the TBA/instructor invariant.
func (a InstructorAssignment) Validate() error {
	hasInstructor := a.InstructorID != nil && !a.InstructorID.IsNil()
	if a.State == InstructorTBA && hasInstructor {
		return dErrors.InvalidInput("tba_assignment_must_not_have_instructor")
	}
	if a.State != InstructorTBA && !hasInstructor {
		return dErrors.InvalidInput("instructor_id_required_for_assignment_state")
	}
	return nil
}
