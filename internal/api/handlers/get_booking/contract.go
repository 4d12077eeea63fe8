package get_booking

import (
	"context"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/bookings/models"
)

type BookingService interface {
	GetVenueBooking(ctx context.Context, caller domain.Caller, venueID, bookingID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
