package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"atelier/internal/models"
	"atelier/internal/usecase"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/platform/httputil"
)

// registerParticipants mounts under /events/{slug}/participants.
func (h *Handler) registerParticipants(r chi.Router) {
	r.Get("/", h.handleListParticipants)
	r.Post("/", h.handleRegisterParticipant)
	r.Delete("/{user}", h.handleRemoveParticipant)
	r.Post("/{user}/check-in", h.handleCheckInParticipant)
}

func (h *Handler) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	registrations, err := usecase.ListParticipants(r.Context(), h.requestDeps(r.Context()), pathParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if registrations == nil {
		registrations = []*models.Registration{}
	}
	httputil.WriteJSON(w, http.StatusOK, participantListResponse{Participants: registrations})
}

// handleRegisterParticipant answers 201 when a row was written and 200 when
// the participant was already registered or waitlisted.
func (h *Handler) handleRegisterParticipant(w http.ResponseWriter, r *http.Request) {
	var req registerParticipantRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var res *usecase.ParticipantResult
	err := h.mutate(r.Context(), audit.ActionParticipantAdded, func(ctx context.Context, d usecase.Deps) error {
		var err error
		res, err = usecase.RegisterParticipant(ctx, d, usecase.RegisterParticipantInput{
			EventSlug:      pathParam(r, "slug"),
			UserIdentifier: req.User,
		})
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Idempotent {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, toParticipant(res))
}

func (h *Handler) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	h.participantCall(w, r, audit.ActionParticipantRemoved, usecase.RemoveParticipant)
}

func (h *Handler) handleCheckInParticipant(w http.ResponseWriter, r *http.Request) {
	h.participantCall(w, r, audit.ActionParticipantCheckedIn, usecase.CheckInParticipant)
}

type participantOp func(ctx context.Context, d usecase.Deps, in usecase.ParticipantInput) (*usecase.ParticipantResult, error)

func (h *Handler) participantCall(w http.ResponseWriter, r *http.Request, action string, op participantOp) {
	in := usecase.ParticipantInput{EventSlug: pathParam(r, "slug"), UserIdentifier: pathParam(r, "user")}

	var res *usecase.ParticipantResult
	err := h.mutate(r.Context(), action, func(ctx context.Context, d usecase.Deps) error {
		var err error
		res, err = op(ctx, d, in)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toParticipant(res))
}
