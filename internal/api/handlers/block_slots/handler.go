package block_slots

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
)

const (
	msgInvalidVenueID     = "некорректный ID площадки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingDate        = "дата обязательна"
	msgAmbiguousMode      = "укажите ровно одно из полей: time, times или fullDay"
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

// Handle POST /api/v1/venues/{venueId}/blocks
// Body: {date, time | times | fullDay, reason?}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	venueID, err := strconv.ParseInt(mux.Vars(r)["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /venues/{id}/blocks - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	var req BlockSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /venues/{id}/blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.Date == "" {
		h.logger.Warn("POST /venues/{id}/blocks - Missing date: venue_id=%d", venueID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	m, err := req.mode()
	if err != nil {
		h.logger.Warn("POST /venues/{id}/blocks - %v: venue_id=%d", err, venueID)
		handlers.RespondBadRequest(w, msgAmbiguousMode)
		return
	}

	switch m {
	case modeSingle:
		h.blockSingle(w, r, caller, venueID, &req)
	case modeMultiple:
		h.blockMultiple(w, r, caller, venueID, &req)
	case modeFullDay:
		h.blockFullDay(w, r, caller, venueID, &req)
	}
}

func (h *Handler) blockSingle(w http.ResponseWriter, r *http.Request, caller domain.Caller, venueID int64, req *BlockSlotsRequest) {
	block, err := h.service.BlockSlot(r.Context(), caller, models.BlockSlotRequest{
		VenueID: venueID,
		Date:    req.Date,
		Time:    *req.Time,
		Reason:  req.Reason,
	})
	if err != nil {
		h.respondServiceError(w, venueID, err)
		return
	}

	status := http.StatusOK
	if block.Created {
		status = http.StatusCreated
	}
	h.logger.Info("POST /venues/{id}/blocks - Slot blocked: venue_id=%d, date=%s, time=%s, created=%t",
		venueID, block.Date, block.Time, block.Created)
	handlers.RespondJSON(w, status, block)
}

func (h *Handler) blockMultiple(w http.ResponseWriter, r *http.Request, caller domain.Caller, venueID int64, req *BlockSlotsRequest) {
	result, err := h.service.BlockMultipleSlots(r.Context(), caller, req.ToBatchItems(venueID))
	if err != nil {
		h.respondServiceError(w, venueID, err)
		return
	}

	status, resp := handlers.FromBatchResult(result)
	h.logger.Info("POST /venues/{id}/blocks - Slots blocked: venue_id=%d, date=%s, succeeded=%d, failed=%d",
		venueID, req.Date, result.Succeeded, result.Failed)
	handlers.RespondJSON(w, status, resp)
}

func (h *Handler) blockFullDay(w http.ResponseWriter, r *http.Request, caller domain.Caller, venueID int64, req *BlockSlotsRequest) {
	result, err := h.service.BlockFullDay(r.Context(), caller, models.BlockFullDayRequest{
		VenueID: venueID,
		Date:    req.Date,
		Reason:  req.Reason,
	})
	if err != nil {
		h.respondServiceError(w, venueID, err)
		return
	}

	status, resp := FromFullDayResult(result)
	h.logger.Info("POST /venues/{id}/blocks - Full day blocked: venue_id=%d, date=%s, created=%d, already=%d, failed=%d",
		venueID, result.Date, result.Created, result.AlreadyBlocked, len(result.Failed))
	handlers.RespondJSON(w, status, resp)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, venueID int64, err error) {
	status, msg := handlers.SlotBlockError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("POST /venues/{id}/blocks - Failed to block: venue_id=%d, error=%v", venueID, err)
		handlers.RespondInternalError(w)
		return
	}
	h.logger.Warn("POST /venues/{id}/blocks - Rejected: venue_id=%d, status=%d, error=%v", venueID, status, err)
	handlers.RespondError(w, status, msg)
}
