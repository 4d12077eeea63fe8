package get_venue_bookings

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
)

const (
	msgInvalidVenueID = "некорректный ID площадки"
	msgInvalidParams  = "некорректные параметры запроса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/venues/{venueId}/bookings
// Query params: date (обязательно), includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	venueID, err := strconv.ParseInt(mux.Vars(r)["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /venues/{id}/bookings - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	serviceReq, err := ToServiceRequest(venueID, r.URL.Query().Get("date"), r.URL.Query().Get("includeInactive"))
	if err != nil {
		h.logger.Warn("GET /venues/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetVenueBookings(r.Context(), caller, serviceReq)
	if err != nil {
		status, msg := handlers.BookingError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("GET /venues/{id}/bookings - Failed to get bookings: venue_id=%d, error=%v", venueID, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("GET /venues/{id}/bookings - Rejected: venue_id=%d, user_id=%d, status=%d",
			venueID, caller.UserID, status)
		handlers.RespondError(w, status, msg)
		return
	}

	h.logger.Info("GET /venues/{id}/bookings - Bookings retrieved: venue_id=%d, count=%d", venueID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
