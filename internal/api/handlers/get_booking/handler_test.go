package get_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/bookings"
	"github.com/m04kA/FitKits-SlotService/internal/service/bookings/models"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
)

type stubService struct {
	err error
}

func (s *stubService) GetVenueBooking(_ context.Context, _ domain.Caller, venueID, bookingID int64) (*models.BookingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingResponse{ID: bookingID, VenueID: venueID, Status: "confirmed"}, nil
}

func doRequest(h *Handler, venueID, bookingID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/venues/"+venueID+"/bookings/"+bookingID, nil)
	req = mux.SetURLVars(req, map[string]string{"venueId": venueID, "bookingId": bookingID})
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{UserID: 7, Role: domain.RoleVenueOwner}))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	rec := doRequest(NewHandler(&stubService{}, logger.Nop()), "1", "42")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":42`)

	assert.Equal(t, http.StatusBadRequest, doRequest(NewHandler(&stubService{}, logger.Nop()), "1", "x").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(NewHandler(&stubService{err: bookings.ErrBookingNotFound}, logger.Nop()), "1", "42").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(NewHandler(&stubService{err: bookings.ErrForbidden}, logger.Nop()), "1", "42").Code)
}
