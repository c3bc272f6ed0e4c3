package members

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes project membership endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   policy.Middleware
}

// NewHandler constructs the membership handler.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountProjectRoutes registers membership routes under a project subtree.
func (h *Handler) MountProjectRoutes(r chi.Router) {
	r.With(
		h.guard.RequirePermission(policy.PermMemberAdd),
		h.guard.RequireResourceAccess(),
	).Post("/", h.add)
	r.With(
		h.guard.RequirePermission(policy.PermMemberList),
		h.guard.RequireResourceAccess(),
	).Get("/", h.list)
	r.With(
		h.guard.RequirePermission(policy.PermMemberRemove),
		h.guard.RequireResourceAccess(),
	).Delete("/{membershipID}", h.remove)
	r.With(
		h.guard.RequirePermission(policy.PermMemberUpdateRole),
		h.guard.RequireResourceAccess(),
	).Patch("/{membershipID}/role", h.updateRole)
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=OWNER EMPLOYEE"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=OWNER EMPLOYEE"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	membership, err := h.service.Add(r.Context(), actor, chi.URLParam(r, "projectID"), req.UserID, req.Role)
	if err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			shared.RespondError(w, http.StatusConflict, shared.CodeConflict, "user is already a member")
			return
		}
		h.logger.Error("add member", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not add member")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, membership)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.service.List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not list members")
		return
	}
	if memberships == nil {
		memberships = []Membership{}
	}
	shared.RespondJSON(w, http.StatusOK, memberships)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	err := h.service.Remove(r.Context(), actor, chi.URLParam(r, "projectID"), chi.URLParam(r, "membershipID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "membership not found")
			return
		}
		h.logger.Error("remove member", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not remove member")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	err := h.service.UpdateRole(r.Context(), actor, chi.URLParam(r, "projectID"), chi.URLParam(r, "membershipID"), req.Role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "membership not found")
			return
		}
		h.logger.Error("update member role", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not update member role")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
