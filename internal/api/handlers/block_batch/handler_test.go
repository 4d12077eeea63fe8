package block_batch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
)

type stubService struct {
	items  []models.BlockItem
	result *models.BatchResult
	err    error
}

func (s *stubService) BlockMultipleSlots(_ context.Context, _ domain.Caller, items []models.BlockItem) (*models.BatchResult, error) {
	s.items = items
	return s.result, s.err
}

func doRequest(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blocks/batch", strings.NewReader(body))
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{UserID: 1, Role: domain.RoleAdmin}))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_AllSucceeded(t *testing.T) {
	svc := &stubService{result: &models.BatchResult{
		Items: []models.BatchItemResult{
			{Item: models.BlockItem{VenueID: 1}, Block: &models.BlockResponse{Created: true}},
			{Item: models.BlockItem{VenueID: 2}, Block: &models.BlockResponse{Created: true}},
		},
		Succeeded: 2,
	}}
	h := NewHandler(svc, logger.Nop())

	rec := doRequest(h, `{"items":[{"venueId":1,"date":"2025-10-15","time":"09:00"},{"venueId":2,"date":"2025-10-15","time":"08:00","reason":"x"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.items, 2)
	assert.Equal(t, int64(2), svc.items[1].VenueID)
	assert.Equal(t, "x", *svc.items[1].Reason)
}

func TestHandle_PartialFailure(t *testing.T) {
	svc := &stubService{result: &models.BatchResult{
		Items: []models.BatchItemResult{
			{Item: models.BlockItem{VenueID: 1}, Block: &models.BlockResponse{Created: true}},
			{Item: models.BlockItem{VenueID: 3}, Err: fmt.Errorf("%w: x", slotblocks.ErrVenueNotFound)},
		},
		Succeeded: 1,
		Failed:    1,
	}}
	h := NewHandler(svc, logger.Nop())

	rec := doRequest(h, `{"items":[{"venueId":1,"date":"2025-10-15","time":"09:00"},{"venueId":3,"date":"2025-10-15","time":"09:00"}]}`)

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":404`)
}

func TestHandle_Rejections(t *testing.T) {
	h := NewHandler(&stubService{err: fmt.Errorf("%w: no slots", slotblocks.ErrInvalidInput)}, logger.Nop())
	assert.Equal(t, http.StatusBadRequest, doRequest(h, `{"items":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, `not json`).Code)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/blocks/batch", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
