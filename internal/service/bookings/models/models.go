package models

import (
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

// UpdateStatusRequest запрос на смену статуса бронирования администратором
type UpdateStatusRequest struct {
	VenueID   int64
	BookingID int64
	Status    string
}

// GetVenueBookingsRequest запрос бронирований площадки на дату
type GetVenueBookingsRequest struct {
	VenueID         int64
	Date            string // YYYY-MM-DD
	IncludeInactive bool   // Включить отменённые и возвращённые
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        int64     `json:"id"`
	VenueID   int64     `json:"venueId"`
	UserID    int64     `json:"userId"`
	Date      string    `json:"date"`      // "2025-10-15"
	StartTime string    `json:"startTime"` // "10:00"
	EndTime   string    `json:"endTime,omitempty"`
	Status    string    `json:"status"`
	Courts    int       `json:"courts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// FromDomainBooking конвертирует бронирование в ответ
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:        b.ID,
		VenueID:   b.VenueID,
		UserID:    b.UserID,
		Date:      domain.FormatDate(b.Date),
		StartTime: b.Time.Normalize().String(),
		Status:    string(b.Status),
		Courts:    b.ConsumedCourts(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if end, err := b.Time.End(); err == nil && !end.Equal(b.Time.Normalize()) {
		resp.EndTime = end.String()
	}
	return resp
}

// FromDomainBookingList конвертирует список бронирований
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, *FromDomainBooking(b))
	}
	return &BookingListResponse{Bookings: items, Total: len(items)}
}
