package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/store"
)

// UserHandler serves the signed-in user's profile, subscription and
// dashboard.
type UserHandler struct {
	userService         service.UserService
	subscriptionService service.SubscriptionService
	dashboardService    service.DashboardService
	logger              *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	userService service.UserService,
	subscriptionService service.SubscriptionService,
	dashboardService service.DashboardService,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
		dashboardService:    dashboardService,
		logger:              logger.With(slog.String("component", "user_handler")),
	}
}

// Profile handles GET /api/users/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Profile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserResponse{User: user})
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithErrorAndLog(w, r, http.StatusConflict, service.EmailInUseMessage, err)
			return
		}
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserResponse{
		Message: "Profile updated successfully",
		User:    user,
	})
}

// ChangePassword handles POST /api/users/change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Password changed successfully")
}

// Subscription handles GET /api/users/subscription.
func (h *UserHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	info, err := h.subscriptionService.Info(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve subscription info")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, info)
}

// Upgrade handles POST /api/users/subscription/upgrade.
func (h *UserHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.subscriptionService.Upgrade(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upgrade subscription")
		return
	}

	h.respondWithTier(w, r, user, "Subscription upgraded to Premium successfully")
}

// Downgrade handles POST /api/users/subscription/downgrade.
func (h *UserHandler) Downgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.subscriptionService.Downgrade(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to downgrade subscription")
		return
	}

	h.respondWithTier(w, r, user, "Subscription downgraded to Free successfully")
}

func (h *UserHandler) respondWithTier(w http.ResponseWriter, r *http.Request, user *domain.User, message string) {
	logger.FromContextOrDefault(r.Context(), h.logger).Info("subscription changed",
		slog.String("user_id", user.ID.String()),
		slog.String("subscription_type", string(user.SubscriptionType)))

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionChangeResponse{
		Message:          message,
		SubscriptionType: user.SubscriptionType,
	})
}

// Dashboard handles GET /api/users/dashboard.
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve dashboard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewDashboardResponse(dashboard))
}

// Deactivate handles POST /api/users/deactivate.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.userService.Deactivate(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to deactivate account")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Account deactivated successfully")
}
