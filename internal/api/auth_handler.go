package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authService auth.AuthService
	cookies     SessionCookies
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService auth.AuthService, cookies SessionCookies, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// decodeBody decodes the JSON body into v and checks its validate tags. It
// writes a 400 response when the body is missing, malformed or invalid.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, InvalidRequestMessage, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Registration failed")
		return
	}

	h.cookies.Set(w, token)
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Message: "Registration successful",
		User:    user,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Login failed")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).
		Debug("user logged in", slog.String("user_id", user.ID.String()))

	h.cookies.Set(w, token)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    user,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logging
// out only clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	shared.RespondWithMessage(w, r, http.StatusOK, "Logout successful")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user info")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserResponse{User: user})
}

// Refresh handles POST /api/auth/refresh by issuing a new cookie for the
// authenticated user.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Token refresh failed")
		return
	}

	token, err := h.authService.Refresh(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Token refresh failed")
		return
	}

	h.cookies.Set(w, token)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Message: "Token refreshed successfully",
		User:    user,
	})
}
