package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/comments"
	"github.com/taskdeck/taskdeck/internal/invites"
	"github.com/taskdeck/taskdeck/internal/members"
	"github.com/taskdeck/taskdeck/internal/notifications"
	"github.com/taskdeck/taskdeck/internal/observability"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/projects"
	"github.com/taskdeck/taskdeck/internal/tasks"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	AuthMiddleware       auth.Middleware
	Guard                policy.Middleware
	AuthHandler          *auth.Handler
	ProjectsHandler      *projects.Handler
	TasksHandler         *tasks.Handler
	CommentsHandler      *comments.Handler
	MembersHandler       *members.Handler
	InvitesHandler       *invites.Handler
	NotificationsHandler *notifications.Handler
	AuditHandler         *audit.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireActor)

		r.Route("/projects", func(r chi.Router) {
			params.ProjectsHandler.MountRoutes(r)
			r.Route("/{projectID}/members", params.MembersHandler.MountProjectRoutes)
			r.Route("/{projectID}/invites", params.InvitesHandler.MountProjectRoutes)
		})
		r.Route("/tasks", func(r chi.Router) {
			params.TasksHandler.MountRoutes(r)
			r.Route("/{taskID}/comments", params.CommentsHandler.MountTaskRoutes)
		})
		r.Route("/comments", params.CommentsHandler.MountRoutes)
		r.Route("/invites", params.InvitesHandler.MountRoutes)
		r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		r.Route("/audit", func(r chi.Router) {
			r.Use(params.Guard.RequirePermission(policy.PermAuditList))
			params.AuditHandler.MountRoutes(r)
		})
	})

	return r
}
