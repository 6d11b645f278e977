package lifecycle

import (
	"strings"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

// TransitionInstructorAssignment applies the adjacency table plus the
// instructor guards:
//   - any non-TBA target requires an instructor;
//   - REASSIGNED requires an instructor different from the current one;
//   - TBA always clears the instructor.
//
// A self-transition returns current unchanged. It may repeat the current
// instructor or omit it; naming a different one fails with
// instructor_id_mismatch. Changing instructors goes through REASSIGNED.
func TransitionInstructorAssignment(current models.InstructorAssignment, next models.InstructorState, instructorID *id.InstructorID) (models.InstructorAssignment, error) {
	to, err := Instructor.Transition(current.State, next)
	if err != nil {
		return models.InstructorAssignment{}, err
	}
	if to == current.State {
		if to == models.InstructorTBA || instructorID == nil || strings.TrimSpace(string(*instructorID)) == "" {
			return current, nil
		}
		normalized, err := id.ParseInstructorID(string(*instructorID))
		if err != nil {
			return models.InstructorAssignment{}, err
		}
		if current.InstructorID == nil || *current.InstructorID != normalized {
			return models.InstructorAssignment{}, dErrors.InvalidInput("instructor_id_mismatch")
		}
		return current, nil
	}
	if to == models.InstructorTBA {
		return models.InstructorAssignment{State: models.InstructorTBA}, nil
	}

	if instructorID == nil || strings.TrimSpace(string(*instructorID)) == "" {
		return models.InstructorAssignment{}, dErrors.InvalidInput("instructor_id_required_for_assignment_state")
	}
	normalized, err := id.ParseInstructorID(string(*instructorID))
	if err != nil {
		return models.InstructorAssignment{}, err
	}
	if to == models.InstructorReassigned && current.InstructorID != nil && *current.InstructorID == normalized {
		return models.InstructorAssignment{}, dErrors.InvalidInput("reassignment_requires_different_instructor")
	}
	return models.InstructorAssignment{State: to, InstructorID: &normalized}, nil
}
