package models

import (
	"time"

	id "atelier/pkg/domain"
)

type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "REGISTERED"
	RegistrationWaitlisted RegistrationStatus = "WAITLISTED"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
	RegistrationCheckedIn  RegistrationStatus = "CHECKED_IN"
)

var registrationStatuses = []RegistrationStatus{
	RegistrationRegistered, RegistrationWaitlisted, RegistrationCancelled, RegistrationCheckedIn,
}

func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	return parseEnum("registration", s, registrationStatuses)
}

// Registration links a user to an event. At most one row exists per
// (EventID, UserID); cancel and re-register cycles reuse it.
type Registration struct {
	ID        id.RegistrationID  `json:"id"`
	EventID   id.EventID         `json:"event_id"`
	UserID    id.UserID          `json:"user_id"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// IsActive reports whether the registration consumes a seat.
func (r *Registration) IsActive() bool {
	return r.Status == RegistrationRegistered || r.Status == RegistrationCheckedIn
}
