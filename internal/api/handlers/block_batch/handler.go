package block_batch

import (
	"net/http"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
)

type Handler struct {
	service SlotBlockService
	logger  Logger
}

func NewHandler(service SlotBlockService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/blocks/batch
// Body: {items: [{venueId, date, time, reason?}]}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	var req BatchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /blocks/batch - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.BlockMultipleSlots(r.Context(), caller, req.Items)
	if err != nil {
		status, msg := handlers.SlotBlockError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /blocks/batch - Failed to block slots: user_id=%d, error=%v", caller.UserID, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("POST /blocks/batch - Rejected: user_id=%d, items=%d, error=%v", caller.UserID, len(req.Items), err)
		handlers.RespondError(w, status, msg)
		return
	}

	status, resp := handlers.FromBatchResult(result)
	h.logger.Info("POST /blocks/batch - Batch processed: user_id=%d, succeeded=%d, failed=%d",
		caller.UserID, result.Succeeded, result.Failed)
	handlers.RespondJSON(w, status, resp)
}
