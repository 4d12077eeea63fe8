package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondNotFound(rec, "площадка не найдена")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"площадка не найдена"}`, rec.Body.String())
}

func TestRespondUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondUnauthorized(rec)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Date string `json:"date"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2025-06-10"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "2025-06-10", dst.Date)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(r, &dst), ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2025-06-10","extra":1}`))
	assert.Error(t, DecodeJSON(r, &dst))
}
