package audit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes the audit timeline endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the audit handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the timeline route. The caller is expected to gate
// the subtree with the audit permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.timeline)
}

type eventView struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	ProjectID  string         `json:"project_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	At         time.Time      `json:"at"`
}

type timelineResponse struct {
	Events []eventView `json:"events"`
	Paging pagingView  `json:"paging"`
}

type pagingView struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := timelineFiltersFromRequest(r)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not load audit timeline")
		return
	}
	views := make([]eventView, 0, len(result.Events))
	for _, e := range result.Events {
		views = append(views, eventView{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ProjectID:  e.ProjectID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			IPAddress:  e.IPAddress,
			UserAgent:  e.UserAgent,
			At:         e.At,
		})
	}
	shared.RespondJSON(w, http.StatusOK, timelineResponse{
		Events: views,
		Paging: pagingView{
			Page:     result.Paging.Page,
			PageSize: result.Paging.PageSize,
			HasNext:  result.Paging.HasNext,
			PrevPage: result.Paging.PrevPage,
			NextPage: result.Paging.NextPage,
		},
	})
}

func timelineFiltersFromRequest(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	filters := TimelineFilters{
		ActorID: q.Get("actor_id"),
		Entity:  q.Get("entity"),
		Action:  q.Get("action"),
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return TimelineFilters{}, err
		}
		filters.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return TimelineFilters{}, err
		}
		filters.To = t
	}
	paging := shared.PaginationFromRequest(r)
	filters.Page = paging.Page
	filters.PageSize = paging.PageSize
	return filters, nil
}
