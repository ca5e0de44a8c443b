package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/store"
)

// ReminderHandler handles reminder-related API requests.
type ReminderHandler struct {
	reminderService service.ReminderService
	logger          *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService service.ReminderService, logger *slog.Logger) *ReminderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderHandler{
		reminderService: reminderService,
		logger:          logger.With(slog.String("component", "reminder_handler")),
	}
}

// List handles GET /api/reminders.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page, err := h.reminderService.List(r.Context(), userID, parseReminderFilter(r), parsePageRequest(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve reminders")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Get handles GET /api/reminders/{id}.
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrReminderNotFound)
	if !ok {
		return
	}

	reminder, err := h.reminderService.Get(r.Context(), userID, reminderID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve reminder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReminderResponse{Reminder: reminder})
}

// Create handles POST /api/reminders.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ReminderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reminder, err := h.reminderService.Create(r.Context(), userID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create reminder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ReminderResponse{
		Message:  "Reminder created successfully",
		Reminder: reminder,
	})
}

// Update handles PUT /api/reminders/{id}.
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrReminderNotFound)
	if !ok {
		return
	}

	var req ReminderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reminder, err := h.reminderService.Update(r.Context(), userID, reminderID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update reminder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReminderResponse{
		Message:  "Reminder updated successfully",
		Reminder: reminder,
	})
}

// Delete handles DELETE /api/reminders/{id}.
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrReminderNotFound)
	if !ok {
		return
	}

	if err := h.reminderService.Delete(r.Context(), userID, reminderID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete reminder")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Reminder deleted successfully")
}

// Complete handles POST /api/reminders/{id}/complete.
func (h *ReminderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.reminderService.Complete, "Reminder marked as completed", "Failed to complete reminder")
}

// Uncomplete handles POST /api/reminders/{id}/uncomplete.
func (h *ReminderHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.reminderService.Uncomplete, "Reminder marked as incomplete", "Failed to uncomplete reminder")
}

func (h *ReminderHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error),
	message, failure string,
) {
	userID, reminderID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrReminderNotFound)
	if !ok {
		return
	}

	reminder, err := apply(r.Context(), userID, reminderID)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReminderResponse{
		Message:  message,
		Reminder: reminder,
	})
}

// Upcoming handles GET /api/reminders/upcoming.
func (h *ReminderHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	days := queryInt(r, "days", service.DefaultUpcomingDays)
	reminders, err := h.reminderService.Upcoming(r.Context(), userID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve upcoming reminders")
		return
	}

	respondWithReminderList(w, r, reminders)
}

// Overdue handles GET /api/reminders/overdue.
func (h *ReminderHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	reminders, err := h.reminderService.Overdue(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve overdue reminders")
		return
	}

	respondWithReminderList(w, r, reminders)
}

func respondWithReminderList(w http.ResponseWriter, r *http.Request, reminders []*domain.Reminder) {
	if reminders == nil {
		reminders = []*domain.Reminder{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ReminderListResponse{
		Reminders: reminders,
		Count:     len(reminders),
	})
}
