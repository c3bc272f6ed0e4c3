package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/projects"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes task endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   policy.Middleware
}

// NewHandler constructs the task handler.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequirePermission(policy.PermTaskCreate)).Post("/", h.create)
	r.With(h.guard.RequirePermission(policy.PermTaskList)).Get("/", h.list)
	r.Route("/{taskID}", func(r chi.Router) {
		r.With(
			h.guard.RequirePermission(policy.PermTaskRead),
			h.guard.RequireResourceAccess(),
		).Get("/", h.get)
		r.With(
			h.guard.RequirePermission(policy.PermTaskUpdate),
			h.guard.RequireResourceAccess(),
		).Put("/", h.update)
		r.With(
			h.guard.RequirePermission(policy.PermTaskUpdateStatus),
			h.guard.RequireResourceAccess(),
		).Patch("/status", h.updateStatus)
		r.With(
			h.guard.RequirePermission(policy.PermTaskAssign),
			h.guard.RequireResourceAccess(),
		).Post("/assign", h.assign)
		r.With(
			h.guard.RequirePermission(policy.PermTaskDelete),
			h.guard.RequireResourceAccess(),
		).Delete("/", h.delete)
	})
}

type createRequest struct {
	ProjectID   string     `json:"project_id" validate:"required,uuid4"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  string     `json:"assigned_to" validate:"omitempty,uuid4"`
	DueDate     *time.Time `json:"due_date"`
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
	task, err := h.service.Create(r.Context(), actor, CreateInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, projects.ErrNotFound):
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "project not found")
		case errors.Is(err, ErrProjectMismatch):
			shared.RespondForbidden(w)
		default:
			h.logger.Error("create task", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not create task")
		}
		return
	}
	shared.RespondJSON(w, http.StatusCreated, task)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "task not found")
			return
		}
		h.logger.Error("get task", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not load task")
		return
	}
	shared.RespondJSON(w, http.StatusOK, task)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	tasks, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.logger.Error("list tasks", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not list tasks")
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	shared.RespondJSON(w, http.StatusOK, tasks)
}

type updateRequest struct {
	Title       string     `json:"title" validate:"max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress blocked done"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"due_date"`
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
	task, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "taskID"), UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondMutationError(w, err, "update task")
		return
	}
	shared.RespondJSON(w, http.StatusOK, task)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress blocked done"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	task, err := h.service.UpdateStatus(r.Context(), actor, chi.URLParam(r, "taskID"), req.Status)
	if err != nil {
		h.respondMutationError(w, err, "update task status")
		return
	}
	shared.RespondJSON(w, http.StatusOK, task)
}

type assignRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	task, err := h.service.Assign(r.Context(), actor, chi.URLParam(r, "taskID"), req.UserID)
	if err != nil {
		h.respondMutationError(w, err, "assign task")
		return
	}
	shared.RespondJSON(w, http.StatusOK, task)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "taskID")); err != nil {
		h.respondMutationError(w, err, "delete task")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "task not found")
	case errors.Is(err, ErrInvalidStatus):
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid task status")
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "operation failed")
	}
}
