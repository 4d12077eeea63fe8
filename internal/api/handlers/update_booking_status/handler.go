package update_booking_status

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
)

const (
	msgInvalidVenueID     = "некорректный ID площадки"
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
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

// Handle PATCH /api/v1/venues/{venueId}/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	vars := mux.Vars(r)
	venueID, err := strconv.ParseInt(vars["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /venues/{id}/bookings/{id}/status - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /venues/{id}/bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /venues/{id}/bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), caller, req.ToServiceRequest(venueID, bookingID))
	if err != nil {
		status, msg := handlers.BookingError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("PATCH /venues/{id}/bookings/{id}/status - Failed to update: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("PATCH /venues/{id}/bookings/{id}/status - Rejected: booking_id=%d, status=%d, error=%v",
			bookingID, status, err)
		handlers.RespondError(w, status, msg)
		return
	}

	h.logger.Info("PATCH /venues/{id}/bookings/{id}/status - Status updated: booking_id=%d, status=%s, user_id=%d",
		bookingID, booking.Status, caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
