package usecase

import (
	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

func strPtr(v string) *string { return &v }

func (s *LifecycleSuite) TestAssignEventInstructor() {
	s.createEvent("assign", nil)

	s.Run("propose requires an instructor", func() {
		_, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{EventSlug: "assign", NextState: "PROPOSED"})
		s.assertCode(err, dErrors.CodeInvalidInput, "instructor_id_required_for_assignment_state")
	})

	s.Run("propose with instructor", func() {
		result, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{
			EventSlug:      "assign",
			NextState:      "proposed",
			InstructorID:   strPtr("ins-1"),
			InstructorName: "Grace Hopper",
		})
		s.Require().NoError(err)
		s.False(result.Idempotent)
		s.Equal(models.InstructorProposed, result.Event.InstructorState)
		s.Equal(id.InstructorID("ins-1"), *result.Event.InstructorID)
		s.Equal("Grace Hopper", result.Event.InstructorName)
	})

	s.Run("same state is a no-op", func() {
		result, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{
			EventSlug:    "assign",
			NextState:    "PROPOSED",
			InstructorID: strPtr("ins-1"),
		})
		s.Require().NoError(err)
		s.True(result.Idempotent)
		s.Equal(id.InstructorID("ins-1"), *result.Event.InstructorID)
	})

	s.Run("same state with another instructor is rejected", func() {
		_, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{
			EventSlug:    "assign",
			NextState:    "PROPOSED",
			InstructorID: strPtr("ins-2"),
		})
		s.assertCode(err, dErrors.CodeInvalidInput, "instructor_id_mismatch")

		stored, err := GetEvent(s.ctx, s.deps, "assign")
		s.Require().NoError(err)
		s.Equal(id.InstructorID("ins-1"), *stored.InstructorID)
	})

	s.Run("illegal edge", func() {
		_, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{
			EventSlug:    "assign",
			NextState:    "CONFIRMED",
			InstructorID: strPtr("ins-1"),
		})
		s.assertCode(err, dErrors.CodeInvalidInput, "invalid_instructor_assignment_transition:PROPOSED->CONFIRMED")
	})

	s.Run("assign then reassign to the same instructor fails", func() {
		_, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{
			EventSlug:    "assign",
			NextState:    "ASSIGNED",
			InstructorID: strPtr("ins-1"),
		})
		s.Require().NoError(err)

		_, err = AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{
			EventSlug:    "assign",
			NextState:    "REASSIGNED",
			InstructorID: strPtr("ins-1"),
		})
		s.assertCode(err, dErrors.CodeInvalidInput, "reassignment_requires_different_instructor")
	})

	s.Run("back to TBA clears instructor and name", func() {
		result, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{EventSlug: "assign", NextState: "TBA"})
		s.Require().NoError(err)
		s.Equal(models.InstructorTBA, result.Event.InstructorState)
		s.Nil(result.Event.InstructorID)
		s.Empty(result.Event.InstructorName)

		stored, err := GetEvent(s.ctx, s.deps, "assign")
		s.Require().NoError(err)
		s.Nil(stored.InstructorID)
	})

	s.Run("unknown state", func() {
		_, err := AssignEventInstructor(s.ctx, s.deps, AssignEventInstructorInput{EventSlug: "assign", NextState: "MAYBE"})
		s.assertCode(err, dErrors.CodeInvalidInput, "invalid_instructor_assignment_state:MAYBE")
	})
}
