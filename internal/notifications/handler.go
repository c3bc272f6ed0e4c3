package notifications

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes notification endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   policy.Middleware
}

// NewHandler constructs the notification handler.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers notification routes. Listing is scoped to the actor;
// instance routes go through the access gate, which admits only the
// addressed user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequirePermission(policy.PermNotificationList)).Get("/", h.list)
	r.Route("/{notificationID}", func(r chi.Router) {
		r.With(
			h.guard.RequirePermission(policy.PermNotificationMarkRead),
			h.guard.RequireResourceAccess(),
		).Post("/read", h.markRead)
		r.With(
			h.guard.RequirePermission(policy.PermNotificationDelete),
			h.guard.RequireResourceAccess(),
		).Delete("/", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"
	items, err := h.service.ListForUser(r.Context(), actor.ID, unreadOnly)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not list notifications")
		return
	}
	if items == nil {
		items = []Notification{}
	}
	shared.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "notification not found")
			return
		}
		h.logger.Error("mark notification read", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not update notification")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, shared.CodeNotFound, "notification not found")
			return
		}
		h.logger.Error("delete notification", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not delete notification")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
