package policy

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/observability"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Middleware wires the decision engine and the audit recorder around HTTP
// handlers. Every gate short-circuits before the wrapped handler runs, so a
// denied operation observes no side effects.
type Middleware struct {
	Engine  *Engine
	Audit   *audit.Recorder
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// URL parameter names recognised by the resource-access gate.
var resourceParams = []struct {
	param    string
	resource ResourceType
}{
	{"taskID", ResourceTask},
	{"projectID", ResourceProject},
	{"commentID", ResourceComment},
	{"notificationID", ResourceNotification},
}

// RequireRoles allows only actors whose role is in the explicit allow-list.
func (m Middleware) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				shared.RespondUnauthorized(w)
				return
			}
			role := ParseRole(actor.Role)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.Audit.Denied(actor.ID, "access", "endpoint", "", audit.ReasonRoleNotAllowed, map[string]any{
				"required_roles": roleNames(roles),
				"user_role":      string(role),
			}, provenance(r))
			m.observe("endpoint", "access", "deny")
			shared.RespondForbidden(w)
		})
	}
}

// RequirePermission allows only actors whose role holds the permission
// string. Denials are audited with the required permission and actor role.
func (m Middleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	resource := "unknown"
	action := permission
	if res, act, ok := strings.Cut(permission, ":"); ok {
		resource, action = res, act
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				shared.RespondUnauthorized(w)
				return
			}
			role := ParseRole(actor.Role)
			if m.Engine.HasPermission(role, permission) {
				m.observe(resource, action, "allow")
				next.ServeHTTP(w, r)
				return
			}
			m.Audit.Denied(actor.ID, permission, resource, "", audit.ReasonInsufficientPermissions, map[string]any{
				"required_permission": permission,
				"user_role":           string(role),
			}, provenance(r))
			m.observe(resource, action, "deny")
			shared.RespondForbidden(w)
		})
	}
}

// RequireResourceAccess resolves instance-level access for the resource
// identified by the route. Exactly one recognised id parameter must be
// present: zero or several is a malformed request (400), never a denial.
func (m Middleware) RequireResourceAccess() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				shared.RespondUnauthorized(w)
				return
			}
			var (
				resource ResourceType
				id       string
				found    int
			)
			for _, candidate := range resourceParams {
				if value := chi.URLParam(r, candidate.param); value != "" {
					resource = candidate.resource
					id = value
					found++
				}
			}
			if found == 0 {
				shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "resource id not provided")
				return
			}
			if found > 1 {
				shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "ambiguous resource id")
				return
			}
			role := ParseRole(actor.Role)
			allowed, err := m.Engine.HasResourceAccess(r.Context(), actor.ID, role, resource, id)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("resource access lookup", slog.String("resource", string(resource)), slog.Any("error", err))
				}
				shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not resolve resource access")
				return
			}
			if allowed {
				m.observe(string(resource), "access", "allow")
				next.ServeHTTP(w, r)
				return
			}
			m.Audit.Denied(actor.ID, "access", string(resource), id, audit.ReasonNoResourceAccess, nil, provenance(r))
			m.observe(string(resource), "access", "deny")
			shared.RespondForbidden(w)
		})
	}
}

// RequireResourceOwner gates edit/delete-own operations on strict
// authorship. Superadmin and owner-role actors bypass the instance check:
// project-wide authority already covers authorship.
func (m Middleware) RequireResourceOwner(resource ResourceType) func(http.Handler) http.Handler {
	param := string(resource) + "ID"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				shared.RespondUnauthorized(w)
				return
			}
			role := ParseRole(actor.Role)
			if role == RoleSuperAdmin || role == RoleOwner {
				next.ServeHTTP(w, r)
				return
			}
			id := chi.URLParam(r, param)
			if id == "" {
				shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "resource id not provided")
				return
			}
			owner, err := m.Engine.IsResourceOwner(r.Context(), actor.ID, resource, id)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("resource owner lookup", slog.String("resource", string(resource)), slog.Any("error", err))
				}
				shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not resolve resource ownership")
				return
			}
			if owner {
				m.observe(string(resource), "modify", "allow")
				next.ServeHTTP(w, r)
				return
			}
			m.Audit.Denied(actor.ID, "modify", string(resource), id, audit.ReasonNotResourceOwner, nil, provenance(r))
			m.observe(string(resource), "modify", "deny")
			shared.RespondForbidden(w)
		})
	}
}

func (m Middleware) observe(resource, action, outcome string) {
	if m.Metrics != nil {
		m.Metrics.PolicyDecision(resource, action, outcome)
	}
}

func provenance(r *http.Request) audit.Provenance {
	return audit.Provenance{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func roleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return names
}
