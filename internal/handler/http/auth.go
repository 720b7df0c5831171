package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/service"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/httputil"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/validator"
)

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	// Consent URL builder for the browser-redirect flow; nil when the
	// provider is not configured.
	authCodeURL func(state string) string
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, authCodeURL func(state string) string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, authCodeURL: authCodeURL, logger: logger}
}

// GoogleLoginRequest is the JSON request body for Google login.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// RefreshRequest is the JSON request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LoginResponse carries the token pair and the public user projection. The
// pair is flattened into the payload rather than nested under a key.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         any    `json:"user"`
}

// GoogleLogin handles POST /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, tokens, err := h.service.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user.Public(),
	})
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, tokens)
}

// GoogleStartResponse carries the constructed provider consent URL.
type GoogleStartResponse struct {
	AuthURL string `json:"authUrl"`
}

// GoogleStart handles GET /api/auth/google/start, returning the Google consent
// page URL for the client to navigate to. With redirect=1 it answers a 302
// instead, for plain browser flows.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.authCodeURL == nil {
		httputil.WriteError(w, r, apperrors.Internal(nil), h.logger)
		return
	}

	state := r.URL.Query().Get("state")
	url := h.authCodeURL(state)

	if r.URL.Query().Get("redirect") == "1" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	httputil.WriteData(w, http.StatusOK, GoogleStartResponse{AuthURL: url})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	user, err := h.service.Me(r.Context(), claims.Subject)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}
