package invites

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/members"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes invitation endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   policy.Middleware
}

// NewHandler constructs the invite handler.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountProjectRoutes registers invite management under a project subtree.
func (h *Handler) MountProjectRoutes(r chi.Router) {
	r.With(
		h.guard.RequirePermission(policy.PermInviteCreate),
		h.guard.RequireResourceAccess(),
	).Post("/", h.create)
	r.With(
		h.guard.RequirePermission(policy.PermInviteList),
		h.guard.RequireResourceAccess(),
	).Get("/", h.list)
	r.With(
		h.guard.RequirePermission(policy.PermInviteCreate),
		h.guard.RequireResourceAccess(),
	).Post("/{inviteID}/resend", h.resend)
	r.With(
		h.guard.RequirePermission(policy.PermInviteCancel),
		h.guard.RequireResourceAccess(),
	).Delete("/{inviteID}", h.cancel)
}

// MountRoutes registers the token redemption endpoint. Any authenticated
// role may redeem an invitation addressed to them.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(
		h.guard.RequireRoles(policy.RoleSuperAdmin, policy.RoleOwner, policy.RoleEmployee),
	).Post("/accept", h.accept)
}

type createInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type acceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	invite, err := h.service.Create(r.Context(), actor, chi.URLParam(r, "projectID"), req.Email)
	if err != nil {
		h.logger.Error("create invite", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not create invite")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, invite)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invites, err := h.service.ListByProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.logger.Error("list invites", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not list invites")
		return
	}
	if invites == nil {
		invites = []Invite{}
	}
	shared.RespondJSON(w, http.StatusOK, invites)
}

func (h *Handler) resend(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	invite, err := h.service.Resend(r.Context(), actor, chi.URLParam(r, "inviteID"))
	if err != nil {
		h.respondServiceError(w, err, "could not resend invite")
		return
	}
	shared.RespondJSON(w, http.StatusOK, invite)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Cancel(r.Context(), actor, chi.URLParam(r, "inviteID")); err != nil {
		h.respondServiceError(w, err, "could not cancel invite")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req acceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	membership, err := h.service.Accept(r.Context(), actor, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "invite not found")
		case errors.Is(err, ErrExpired):
			shared.RespondError(w, http.StatusConflict, shared.CodeConflict, "invite has expired")
		case errors.Is(err, ErrNotPending):
			shared.RespondError(w, http.StatusConflict, shared.CodeConflict, "invite is no longer pending")
		case errors.Is(err, members.ErrAlreadyMember):
			shared.RespondError(w, http.StatusConflict, shared.CodeConflict, "already a member of this project")
		default:
			h.logger.Error("accept invite", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not accept invite")
		}
		return
	}
	shared.RespondJSON(w, http.StatusOK, membership)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "invite not found")
	case errors.Is(err, ErrNotPending):
		shared.RespondError(w, http.StatusConflict, shared.CodeConflict, "invite is no longer pending")
	default:
		h.logger.Error(fallback, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, fallback)
	}
}
