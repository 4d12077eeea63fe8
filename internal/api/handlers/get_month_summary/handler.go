package get_month_summary

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/service/calendar"
)

const (
	msgInvalidVenueID = "некорректный ID площадки"
	msgInvalidMonth   = "некорректный год или месяц"
	msgVenueNotFound  = "площадка не найдена"
)

type Handler struct {
	service CalendarService
	logger  Logger
}

func NewHandler(service CalendarService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/venues/{venueId}/month-summary
// Query params: year (YYYY), month (1-12)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(mux.Vars(r)["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /venues/{id}/month-summary - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	year, yearErr := strconv.Atoi(r.URL.Query().Get("year"))
	month, monthErr := strconv.Atoi(r.URL.Query().Get("month"))
	if yearErr != nil || monthErr != nil {
		h.logger.Warn("GET /venues/{id}/month-summary - Invalid year or month: venue_id=%d, year=%q, month=%q",
			venueID, r.URL.Query().Get("year"), r.URL.Query().Get("month"))
		handlers.RespondBadRequest(w, msgInvalidMonth)
		return
	}

	summary, err := h.service.GetMonthSummary(r.Context(), venueID, year, month)
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrVenueNotFound):
			h.logger.Warn("GET /venues/{id}/month-summary - Venue not found: venue_id=%d", venueID)
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, calendar.ErrInvalidMonth):
			h.logger.Warn("GET /venues/{id}/month-summary - Invalid month: venue_id=%d, year=%d, month=%d", venueID, year, month)
			handlers.RespondBadRequest(w, msgInvalidMonth)

		default:
			h.logger.Error("GET /venues/{id}/month-summary - Failed to get summary: venue_id=%d, error=%v", venueID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /venues/{id}/month-summary - Summary retrieved: venue_id=%d, %04d-%02d, blocked=%d, booked=%d",
		venueID, year, month, len(summary.BlockedDates), len(summary.BookedDates))
	handlers.RespondJSON(w, http.StatusOK, summary)
}
