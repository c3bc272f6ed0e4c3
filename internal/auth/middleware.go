package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// Middleware resolves the Authorization bearer token into the request actor.
type Middleware struct {
	Store  *TokenStore
	Logger *slog.Logger
}

// RequireActor rejects requests without a valid token and stores the actor
// in context for the policy gates downstream.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		claims, err := m.Store.Lookup(r.Context(), token)
		if err != nil {
			if !errors.Is(err, shared.ErrInvalidToken) {
				if m.Logger != nil {
					m.Logger.Error("token lookup", slog.Any("error", err))
				}
				shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "could not resolve session")
				return
			}
			shared.RespondUnauthorized(w)
			return
		}
		actor := shared.Actor{ID: claims.UserID, Role: claims.Role, ProjectID: claims.ProjectID}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
