package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"atelier/internal/models"
	"atelier/internal/usecase"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/platform/httputil"
	"atelier/pkg/requestcontext"
)

func (h *Handler) registerEvents(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.handleListEvents)
		r.Post("/", h.handleCreateEvent)
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", h.handleGetEvent)
			r.Patch("/", h.handleUpdateEvent)
			r.Post("/publish", h.handlePublishEvent)
			r.Post("/cancel", h.handleCancelEvent)
			r.Put("/instructor", h.handleAssignInstructor)
			r.Route("/participants", h.registerParticipants)
		})
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := usecase.ListEvents(r.Context(), h.requestDeps(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, eventListResponse{Events: events})
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := usecase.GetEvent(r.Context(), h.requestDeps(r.Context()), pathParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var event *models.Event
	err := h.mutate(r.Context(), audit.ActionEventCreated, func(ctx context.Context, d usecase.Deps) error {
		var err error
		event, err = usecase.CreateEvent(ctx, d, req.toInput(requestcontext.ActorID(ctx).String()))
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var event *models.Event
	err := h.mutate(r.Context(), audit.ActionEventUpdated, func(ctx context.Context, d usecase.Deps) error {
		var err error
		event, err = usecase.UpdateEvent(ctx, d, req.toInput(pathParam(r, "slug")))
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) handlePublishEvent(w http.ResponseWriter, r *http.Request) {
	var res *usecase.EventResult
	err := h.mutate(r.Context(), audit.ActionEventPublished, func(ctx context.Context, d usecase.Deps) error {
		var err error
		res, err = usecase.PublishEvent(ctx, d, pathParam(r, "slug"))
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventResult(res))
}

func (h *Handler) handleCancelEvent(w http.ResponseWriter, r *http.Request) {
	var req cancelEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var event *models.Event
	err := h.mutate(r.Context(), audit.ActionEventCancelled, func(ctx context.Context, d usecase.Deps) error {
		var err error
		event, err = usecase.CancelEvent(ctx, d, usecase.CancelEventInput{Slug: pathParam(r, "slug"), Reason: req.Reason})
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) handleAssignInstructor(w http.ResponseWriter, r *http.Request) {
	var req assignInstructorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var res *usecase.EventResult
	err := h.mutate(r.Context(), audit.ActionInstructorAssigned, func(ctx context.Context, d usecase.Deps) error {
		var err error
		res, err = usecase.AssignEventInstructor(ctx, d, usecase.AssignEventInstructorInput{
			EventSlug:      pathParam(r, "slug"),
			NextState:      req.State,
			InstructorID:   req.InstructorID,
			InstructorName: req.InstructorName,
		})
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventResult(res))
}
