package get_booking

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
)

const (
	msgInvalidVenueID   = "некорректный ID площадки"
	msgInvalidBookingID = "некорректный ID бронирования"
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

// Handle GET /api/v1/venues/{venueId}/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	vars := mux.Vars(r)
	venueID, err := strconv.ParseInt(vars["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /venues/{id}/bookings/{id} - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /venues/{id}/bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Сервис сам проверит права на площадку
	booking, err := h.service.GetVenueBooking(r.Context(), caller, venueID, bookingID)
	if err != nil {
		status, msg := handlers.BookingError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("GET /venues/{id}/bookings/{id} - Failed to get booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("GET /venues/{id}/bookings/{id} - Rejected: venue_id=%d, booking_id=%d, user_id=%d, status=%d",
			venueID, bookingID, caller.UserID, status)
		handlers.RespondError(w, status, msg)
		return
	}

	h.logger.Info("GET /venues/{id}/bookings/{id} - Booking retrieved: booking_id=%d, user_id=%d", bookingID, caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
