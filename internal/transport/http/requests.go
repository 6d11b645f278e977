package httptransport

import (
	"time"

	"atelier/internal/usecase"
)

type registerUserRequest struct {
	Email string `json:"email"`
}

type createEventRequest struct {
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	StartAt        time.Time      `json:"start_at"`
	EndAt          time.Time      `json:"end_at"`
	Timezone       string         `json:"timezone"`
	DeliveryMode   string         `json:"delivery_mode"`
	EngagementType string         `json:"engagement_type"`
	LocationText   string         `json:"location_text"`
	MeetingURL     string         `json:"meeting_url"`
	Capacity       *int           `json:"capacity"`
	Metadata       map[string]any `json:"metadata"`
}

func (req createEventRequest) toInput(createdBy string) usecase.CreateEventInput {
	return usecase.CreateEventInput{
		Slug:           req.Slug,
		Title:          req.Title,
		Description:    req.Description,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
		Timezone:       req.Timezone,
		DeliveryMode:   req.DeliveryMode,
		EngagementType: req.EngagementType,
		LocationText:   req.LocationText,
		MeetingURL:     req.MeetingURL,
		Capacity:       req.Capacity,
		Metadata:       req.Metadata,
		CreatedBy:      createdBy,
	}
}

// updateEventRequest is a patch: absent fields keep their value.
type updateEventRequest struct {
	Title          *string        `json:"title"`
	Description    *string        `json:"description"`
	StartAt        *time.Time     `json:"start_at"`
	EndAt          *time.Time     `json:"end_at"`
	Timezone       *string        `json:"timezone"`
	DeliveryMode   *string        `json:"delivery_mode"`
	EngagementType *string        `json:"engagement_type"`
	LocationText   *string        `json:"location_text"`
	MeetingURL     *string        `json:"meeting_url"`
	Capacity       *int           `json:"capacity"`
	ClearCapacity  bool           `json:"clear_capacity"`
	Metadata       map[string]any `json:"metadata"`
}

func (req updateEventRequest) toInput(slug string) usecase.UpdateEventInput {
	return usecase.UpdateEventInput{
		Slug:           slug,
		Title:          req.Title,
		Description:    req.Description,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
		Timezone:       req.Timezone,
		DeliveryMode:   req.DeliveryMode,
		EngagementType: req.EngagementType,
		LocationText:   req.LocationText,
		MeetingURL:     req.MeetingURL,
		Capacity:       req.Capacity,
		ClearCapacity:  req.ClearCapacity,
		Metadata:       req.Metadata,
	}
}

type cancelEventRequest struct {
	Reason string `json:"reason"`
}

type assignInstructorRequest struct {
	State          string  `json:"state"`
	InstructorID   *string `json:"instructor_id"`
	InstructorName string  `json:"instructor_name"`
}

type registerParticipantRequest struct {
	// User is a user id or an email address.
	User string `json:"user"`
}

type setUserStatusRequest struct {
	Status string `json:"status"`
}
