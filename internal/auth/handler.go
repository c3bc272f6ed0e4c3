package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler exposes login/logout endpoints.
type Handler struct {
	logger      *slog.Logger
	store       *TokenStore
	credentials CredentialSource
	audit       *audit.Recorder
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, store *TokenStore, credentials CredentialSource, recorder *audit.Recorder) *Handler {
	return &Handler{logger: logger, store: store, credentials: credentials, audit: recorder}
}

// MountRoutes registers auth routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	ProjectID string `json:"project_id,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, shared.CodeBadRequest, err.Error())
		return
	}
	claims, err := h.credentials.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			shared.RespondError(w, http.StatusUnauthorized, shared.CodeUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("verify credentials", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "login failed")
		return
	}
	token, err := h.store.Issue(r.Context(), claims)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "login failed")
		return
	}
	h.audit.Record(audit.Event{
		ActorID:    claims.UserID,
		ProjectID:  claims.ProjectID,
		Action:     "login",
		EntityType: "user",
		EntityID:   claims.UserID,
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	shared.RespondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		UserID:    claims.UserID,
		Role:      claims.Role,
		ProjectID: claims.ProjectID,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		shared.RespondUnauthorized(w)
		return
	}
	claims, err := h.store.Lookup(r.Context(), token)
	if err != nil {
		shared.RespondUnauthorized(w)
		return
	}
	if err := h.store.Revoke(r.Context(), token); err != nil {
		h.logger.Error("revoke token", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.CodeInternal, "logout failed")
		return
	}
	h.audit.Record(audit.Event{
		ActorID:    claims.UserID,
		Action:     "logout",
		EntityType: "user",
		EntityID:   claims.UserID,
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
