package httptransport

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"atelier/internal/models"
	"atelier/internal/usecase"
	"atelier/internal/useradmin"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/platform/httputil"
)

func (h *Handler) registerUsers(r chi.Router) {
	r.Post("/users", h.handleRegisterUser)
}

func (h *Handler) registerAdmin(r chi.Router) {
	r.Route("/admin/users/{identifier}", func(r chi.Router) {
		r.Patch("/status", h.handleSetUserStatus)
		r.Post("/roles/{role}", h.handleAssignRole)
		r.Delete("/roles/{role}", h.handleRevokeRole)
	})
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var user *models.User
	err := h.mutate(r.Context(), audit.ActionUserRegistered, func(ctx context.Context, d usecase.Deps) error {
		var err error
		user, err = usecase.RegisterUser(ctx, d, usecase.RegisterUserInput{Email: req.Email})
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleSetUserStatus(w http.ResponseWriter, r *http.Request) {
	var req setUserStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	identifier := pathParam(r, "identifier")
	h.adminCall(w, r, func(ctx context.Context, actor useradmin.Actor) (*models.User, error) {
		return h.admin.SetStatus(ctx, actor, identifier, req.Status)
	})
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	identifier, role := pathParam(r, "identifier"), pathParam(r, "role")
	h.adminCall(w, r, func(ctx context.Context, actor useradmin.Actor) (*models.User, error) {
		return h.admin.AssignRole(ctx, actor, identifier, role)
	})
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	identifier, role := pathParam(r, "identifier"), pathParam(r, "role")
	h.adminCall(w, r, func(ctx context.Context, actor useradmin.Actor) (*models.User, error) {
		return h.admin.RevokeRole(ctx, actor, identifier, role)
	})
}

// adminCall runs a user-admin operation in a transaction as the request actor.
func (h *Handler) adminCall(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor useradmin.Actor) (*models.User, error)) {
	var user *models.User
	err := h.tx.RunInTx(r.Context(), func(ctx context.Context) error {
		var err error
		user, err = fn(ctx, useradmin.ActorFromContext(ctx))
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// pathParam returns the unescaped route parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
