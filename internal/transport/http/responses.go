package httptransport

import (
	"atelier/internal/models"
	"atelier/internal/usecase"
)

type eventListResponse struct {
	Events []*models.Event `json:"events"`
}

type eventResultResponse struct {
	Event      *models.Event `json:"event"`
	Idempotent bool          `json:"idempotent"`
}

func toEventResult(res *usecase.EventResult) eventResultResponse {
	return eventResultResponse{Event: res.Event, Idempotent: res.Idempotent}
}

type participantListResponse struct {
	Participants []*models.Registration `json:"participants"`
}

type participantResponse struct {
	Registration   *models.Registration `json:"registration"`
	Idempotent     bool                 `json:"idempotent"`
	Outcome        string               `json:"outcome,omitempty"`
	PreviousStatus string               `json:"previous_status,omitempty"`
}

func toParticipant(res *usecase.ParticipantResult) participantResponse {
	return participantResponse{
		Registration:   res.Registration,
		Idempotent:     res.Idempotent,
		Outcome:        string(res.Outcome),
		PreviousStatus: string(res.PreviousStatus),
	}
}
