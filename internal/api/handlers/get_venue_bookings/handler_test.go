package get_venue_bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/bookings"
	"github.com/m04kA/FitKits-SlotService/internal/service/bookings/models"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
)

type stubService struct {
	got *models.GetVenueBookingsRequest
	err error
}

func (s *stubService) GetVenueBookings(_ context.Context, _ domain.Caller, req *models.GetVenueBookingsRequest) (*models.BookingListResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1}}, Total: 1}, nil
}

func doRequest(h *Handler, venueID, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/venues/"+venueID+"/bookings"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"venueId": venueID})
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{UserID: 7, Role: domain.RoleVenueOwner}))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, logger.Nop())

	rec := doRequest(h, "1", "?date=2025-10-15&includeInactive=true")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &models.GetVenueBookingsRequest{VenueID: 1, Date: "2025-10-15", IncludeInactive: true}, svc.got)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestHandle_Errors(t *testing.T) {
	h := NewHandler(&stubService{}, logger.Nop())
	assert.Equal(t, http.StatusBadRequest, doRequest(h, "1", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, "1", "?date=2025-10-15&includeInactive=maybe").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, "x", "?date=2025-10-15").Code)

	h = NewHandler(&stubService{err: bookings.ErrForbidden}, logger.Nop())
	assert.Equal(t, http.StatusForbidden, doRequest(h, "1", "?date=2025-10-15").Code)

	h = NewHandler(&stubService{err: bookings.ErrVenueNotFound}, logger.Nop())
	assert.Equal(t, http.StatusNotFound, doRequest(h, "1", "?date=2025-10-15").Code)
}
