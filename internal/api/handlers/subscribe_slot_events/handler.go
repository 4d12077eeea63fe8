package subscribe_slot_events

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
	"github.com/m04kA/FitKits-SlotService/internal/infra/realtime"
	venueRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/venue"
)

const (
	msgInvalidVenueID = "некорректный ID площадки"
	msgVenueNotFound  = "площадка не найдена"
	msgUnavailable    = "подписка на события недоступна"
)

type Handler struct {
	hub       EventHub
	venueRepo VenueRepository
	logger    Logger
}

func NewHandler(hub EventHub, venueRepo VenueRepository, logger Logger) *Handler {
	return &Handler{
		hub:       hub,
		venueRepo: venueRepo,
		logger:    logger,
	}
}

// Handle GET /api/v1/venues/{venueId}/events
// Websocket: сервер шлет SlotEvent в JSON при каждом изменении слотов площадки
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	venueID, err := strconv.ParseInt(mux.Vars(r)["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /venues/{id}/events - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	venue, err := h.venueRepo.GetByID(r.Context(), venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			h.logger.Warn("GET /venues/{id}/events - Venue not found: venue_id=%d", venueID)
			handlers.RespondNotFound(w, msgVenueNotFound)
			return
		}
		h.logger.Error("GET /venues/{id}/events - Failed to get venue: venue_id=%d, error=%v", venueID, err)
		handlers.RespondInternalError(w)
		return
	}
	if !venue.IsActive {
		handlers.RespondNotFound(w, msgVenueNotFound)
		return
	}

	h.logger.Info("GET /venues/{id}/events - Subscriber connected: venue_id=%d, user_id=%d", venueID, caller.UserID)
	if err := h.hub.Serve(w, r, venueID); err != nil {
		if errors.Is(err, realtime.ErrHubClosed) {
			h.logger.Warn("GET /venues/{id}/events - Hub closed: venue_id=%d", venueID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgUnavailable)
			return
		}
		// Ответ уже отправлен upgrader'ом
		h.logger.Warn("GET /venues/{id}/events - Upgrade failed: venue_id=%d, error=%v", venueID, err)
		return
	}
	h.logger.Info("GET /venues/{id}/events - Subscriber disconnected: venue_id=%d, user_id=%d", venueID, caller.UserID)
}
