package update_booking_status

import "github.com/m04kA/FitKits-SlotService/internal/service/bookings/models"

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status"` // cancelled | refunded
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest(venueID, bookingID int64) *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		VenueID:   venueID,
		BookingID: bookingID,
		Status:    r.Status,
	}
}
