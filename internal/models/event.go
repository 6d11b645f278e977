package models

import (
	"maps"
	"time"

	id "atelier/pkg/domain"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

var eventStatuses = []EventStatus{EventStatusDraft, EventStatusPublished, EventStatusCancelled}

func ParseEventStatus(s string) (EventStatus, error) {
	return parseEnum("event", s, eventStatuses)
}

// DeliveryMode drives logistics validation: ONLINE needs a meeting URL,
// IN_PERSON a location, HYBRID both.
type DeliveryMode string

const (
	DeliveryOnline   DeliveryMode = "ONLINE"
	DeliveryInPerson DeliveryMode = "IN_PERSON"
	DeliveryHybrid   DeliveryMode = "HYBRID"
)

var deliveryModes = []DeliveryMode{DeliveryOnline, DeliveryInPerson, DeliveryHybrid}

func ParseDeliveryMode(s string) (DeliveryMode, error) {
	return parseEnum("delivery_mode", s, deliveryModes)
}

// RequiresMeetingURL reports whether attendees join remotely.
func (m DeliveryMode) RequiresMeetingURL() bool {
	return m == DeliveryOnline || m == DeliveryHybrid
}

// RequiresLocation reports whether attendees join on site.
func (m DeliveryMode) RequiresLocation() bool {
	return m == DeliveryInPerson || m == DeliveryHybrid
}

type EngagementType string

const (
	EngagementTraining   EngagementType = "TRAINING"
	EngagementWorkshop   EngagementType = "WORKSHOP"
	EngagementConsulting EngagementType = "CONSULTING"
	EngagementWebinar    EngagementType = "WEBINAR"
	EngagementCoaching   EngagementType = "COACHING"
)

var engagementTypes = []EngagementType{
	EngagementTraining, EngagementWorkshop, EngagementConsulting, EngagementWebinar, EngagementCoaching,
}

func ParseEngagementType(s string) (EngagementType, error) {
	return parseEnum("engagement_type", s, engagementTypes)
}

// Event is a scheduled engagement. StartAt is always before EndAt and a nil
// Capacity means unlimited seats.
type Event struct {
	ID              id.EventID       `json:"id"`
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	StartAt         time.Time        `json:"start_at"`
	EndAt           time.Time        `json:"end_at"`
	Timezone        string           `json:"timezone"`
	DeliveryMode    DeliveryMode     `json:"delivery_mode"`
	EngagementType  EngagementType   `json:"engagement_type"`
	LocationText    string           `json:"location_text,omitempty"`
	MeetingURL      string           `json:"meeting_url,omitempty"`
	InstructorState InstructorState  `json:"instructor_state"`
	InstructorID    *id.InstructorID `json:"instructor_id,omitempty"`
	InstructorName  string           `json:"instructor_name,omitempty"`
	Status          EventStatus      `json:"status"`
	Capacity        *int             `json:"capacity,omitempty"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
	CreatedBy       *id.UserID       `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// HasUnlimitedCapacity reports whether registrations never waitlist.
func (e *Event) HasUnlimitedCapacity() bool {
	return e.Capacity == nil
}

// Assignment returns the event's instructor assignment.
func (e *Event) Assignment() InstructorAssignment {
	return InstructorAssignment{State: e.InstructorState, InstructorID: e.InstructorID}
}

// Clone returns a deep copy so callers can mutate without aliasing stores.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	out := *e
	if e.Capacity != nil {
		c := *e.Capacity
		out.Capacity = &c
	}
	if e.InstructorID != nil {
		i := *e.InstructorID
		out.InstructorID = &i
	}
	if e.CreatedBy != nil {
		u := *e.CreatedBy
		out.CreatedBy = &u
	}
	out.Metadata = maps.Clone(e.Metadata)
	return &out
}
