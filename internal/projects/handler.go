package projects

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes project endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   policy.Middleware
}

// NewHandler constructs the project handler.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers project routes. Callers mount this under an
// authenticated subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequirePermission(policy.PermProjectCreate)).Post("/", h.create)
	r.With(h.guard.RequirePermission(policy.PermProjectList)).Get("/", h.list)
	r.Route("/{projectID}", func(r chi.Router) {
		r.With(
			h.guard.RequirePermission(policy.PermProjectRead),
			h.guard.RequireResourceAccess(),
		).Get("/", h.get)
		r.With(
			h.guard.RequirePermission(policy.PermProjectUpdate),
			h.guard.RequireResourceAccess(),
		).Put("/", h.update)
		r.With(h.guard.RequireRoles(policy.RoleSuperAdmin)).Delete("/", h.delete)
	})
}

type createRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=100"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	project, err := h.service.Create(r.Context(), actor, CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, ErrOwnerHasProject) {
			shared.RespondError(w, http.StatusConflict, shared.CodeConflict, "owner already has a project")
			return
		}
		h.logger.Error("create project", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not create project")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, project)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "project not found")
			return
		}
		h.logger.Error("get project", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not load project")
		return
	}
	shared.RespondJSON(w, http.StatusOK, project)
}

type updateRequest struct {
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=100"`
	Status      string `json:"status" validate:"omitempty,oneof=active disabled"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	project, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "projectID"), UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "project not found")
			return
		}
		h.logger.Error("update project", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not update project")
		return
	}
	shared.RespondJSON(w, http.StatusOK, project)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "projectID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "project not found")
			return
		}
		h.logger.Error("delete project", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not delete project")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	projects, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.logger.Error("list projects", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not list projects")
		return
	}
	if projects == nil {
		projects = []Project{}
	}
	shared.RespondJSON(w, http.StatusOK, projects)
}
