package unblock_slot

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
)

const (
	msgInvalidVenueID = "некорректный ID площадки"
	msgMissingParams  = "параметры date и time обязательны"
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

// UnblockResponse HTTP response model
type UnblockResponse struct {
	Unblocked bool `json:"unblocked"`
}

// Handle DELETE /api/v1/venues/{venueId}/blocks
// Query params: date (YYYY-MM-DD), time (HH:MM)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	venueID, err := strconv.ParseInt(mux.Vars(r)["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /venues/{id}/blocks - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	query := r.URL.Query()
	date, slotTime := query.Get("date"), query.Get("time")
	if date == "" || slotTime == "" {
		h.logger.Warn("DELETE /venues/{id}/blocks - Missing date or time: venue_id=%d", venueID)
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	unblocked, err := h.service.UnblockSlot(r.Context(), caller, models.UnblockSlotRequest{
		VenueID: venueID,
		Date:    date,
		Time:    slotTime,
	})
	if err != nil {
		status, msg := handlers.SlotBlockError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("DELETE /venues/{id}/blocks - Failed to unblock: venue_id=%d, date=%s, time=%s, error=%v",
				venueID, date, slotTime, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("DELETE /venues/{id}/blocks - Rejected: venue_id=%d, status=%d, error=%v", venueID, status, err)
		handlers.RespondError(w, status, msg)
		return
	}

	h.logger.Info("DELETE /venues/{id}/blocks - Slot unblocked: venue_id=%d, date=%s, time=%s", venueID, date, slotTime)
	handlers.RespondJSON(w, http.StatusOK, UnblockResponse{Unblocked: unblocked})
}
