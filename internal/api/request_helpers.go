package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/store"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserID(r.Context())
}

// getPathUUID extracts a UUID from the URL path parameters. A missing or
// malformed identifier cannot name an owned record and is reported as
// notFound.
func getPathUUID(r *http.Request, paramName string, notFound error) (uuid.UUID, error) {
	pathParam := strings.TrimSpace(chi.URLParam(r, paramName))
	if pathParam == "" {
		return uuid.Nil, notFound
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// requireUserID writes a 401 response and returns false when the request
// carries no authenticated user.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts both the user ID from context and a UUID
// from the path parameters. It writes an error response if either
// extraction fails.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	notFound error,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName, notFound)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// queryInt returns the integer query parameter name, or fallback when it is
// absent or not an integer.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// parsePageRequest reads page and per_page, clamped to the allowed range.
func parsePageRequest(r *http.Request) domain.PageRequest {
	return domain.NewPageRequest(
		queryInt(r, "page", domain.DefaultPage),
		queryInt(r, "per_page", domain.DefaultPerPage),
	)
}

// parseMemoryFilter reads search, type and importance. Unknown types and
// out-of-range importance values disable the respective filter.
func parseMemoryFilter(r *http.Request) store.MemoryFilter {
	query := r.URL.Query()
	filter := store.MemoryFilter{
		Search: strings.TrimSpace(query.Get("search")),
	}

	if t, ok := domain.ParseMemoryType(query.Get("type")); ok {
		filter.MemoryType = &t
	}
	if level := queryInt(r, "importance", 0); domain.ValidImportance(level) {
		filter.Importance = &level
	}
	return filter
}

// parseReminderFilter reads type and status. Unknown values disable the
// respective filter.
func parseReminderFilter(r *http.Request) store.ReminderFilter {
	query := r.URL.Query()
	var filter store.ReminderFilter

	if t, ok := domain.ParseReminderType(query.Get("type")); ok {
		filter.ReminderType = &t
	}
	filter.Status = domain.ParseReminderStatus(query.Get("status"))
	return filter
}
