package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/store"
)

// MemoryHandler handles memory-related API requests.
type MemoryHandler struct {
	memoryService  service.MemoryService
	insightService service.InsightService
	logger         *slog.Logger
}

// NewMemoryHandler creates a new MemoryHandler.
func NewMemoryHandler(
	memoryService service.MemoryService,
	insightService service.InsightService,
	logger *slog.Logger,
) *MemoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryHandler{
		memoryService:  memoryService,
		insightService: insightService,
		logger:         logger.With(slog.String("component", "memory_handler")),
	}
}

// List handles GET /api/memories.
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page, err := h.memoryService.List(r.Context(), userID, parseMemoryFilter(r), parsePageRequest(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve memories")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Get handles GET /api/memories/{id}.
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrMemoryNotFound)
	if !ok {
		return
	}

	memory, err := h.memoryService.Get(r.Context(), userID, memoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve memory")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MemoryResponse{Memory: memory})
}

// Create handles POST /api/memories.
func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req MemoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	memory, err := h.memoryService.Create(r.Context(), userID, req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create memory")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, MemoryResponse{
		Message: "Memory created successfully",
		Memory:  memory,
	})
}

// Update handles PUT /api/memories/{id}.
func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrMemoryNotFound)
	if !ok {
		return
	}

	var req MemoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	memory, err := h.memoryService.Update(r.Context(), userID, memoryID, req.ToPatch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update memory")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MemoryResponse{
		Message: "Memory updated successfully",
		Memory:  memory,
	})
}

// Delete handles DELETE /api/memories/{id}.
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrMemoryNotFound)
	if !ok {
		return
	}

	if err := h.memoryService.Delete(r.Context(), userID, memoryID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete memory")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Memory deleted successfully")
}

// Stats handles GET /api/memories/stats.
func (h *MemoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.memoryService.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve memory stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Insights handles POST /api/memories/{id}/insights.
func (h *MemoryHandler) Insights(w http.ResponseWriter, r *http.Request) {
	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrMemoryNotFound)
	if !ok {
		return
	}

	insights, err := h.insightService.Generate(r.Context(), userID, memoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate insights")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("insights generated",
		slog.String("memory_id", memoryID.String()),
		slog.Int("suggested_tags", len(insights.SuggestedTags)))

	shared.RespondWithJSON(w, r, http.StatusOK, InsightsResponse{
		MemoryID: memoryID,
		Insights: insights,
	})
}
