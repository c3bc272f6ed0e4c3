package comments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes comment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   policy.Middleware
}

// NewHandler constructs the comment handler.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountTaskRoutes registers the task-scoped comment routes; access to the
// enclosing task governs creating and listing comments.
func (h *Handler) MountTaskRoutes(r chi.Router) {
	r.With(
		h.guard.RequirePermission(policy.PermCommentCreate),
		h.guard.RequireResourceAccess(),
	).Post("/", h.create)
	r.With(
		h.guard.RequirePermission(policy.PermCommentList),
		h.guard.RequireResourceAccess(),
	).Get("/", h.listByTask)
}

// MountRoutes registers the comment-instance routes. Editing and deleting
// require authorship unless the actor is a superadmin or project owner.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{commentID}", func(r chi.Router) {
		r.With(
			h.guard.RequirePermission(policy.PermCommentUpdateOwn),
			h.guard.RequireResourceAccess(),
			h.guard.RequireResourceOwner(policy.ResourceComment),
		).Put("/", h.update)
		r.With(
			h.guard.RequireResourceAccess(),
			h.guard.RequireResourceOwner(policy.ResourceComment),
		).Delete("/", h.delete)
	})
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	comment, err := h.service.Create(r.Context(), actor, chi.URLParam(r, "taskID"), req.Content)
	if err != nil {
		h.logger.Error("create comment", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not create comment")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, comment)
}

func (h *Handler) listByTask(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListByTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		h.logger.Error("list comments", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not list comments")
		return
	}
	if comments == nil {
		comments = []Comment{}
	}
	shared.RespondJSON(w, http.StatusOK, comments)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	comment, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "comment not found")
			return
		}
		h.logger.Error("update comment", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not update comment")
		return
	}
	shared.RespondJSON(w, http.StatusOK, comment)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "commentID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "comment not found")
			return
		}
		h.logger.Error("delete comment", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not delete comment")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
