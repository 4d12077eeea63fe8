package get_venue_bookings

import (
	"fmt"
	"strconv"

	"github.com/m04kA/FitKits-SlotService/internal/service/bookings/models"
)

// ToServiceRequest создает запрос к сервису из query параметров
func ToServiceRequest(venueID int64, dateStr, includeInactiveStr string) (*models.GetVenueBookingsRequest, error) {
	if dateStr == "" {
		return nil, fmt.Errorf("date is required")
	}

	req := &models.GetVenueBookingsRequest{
		VenueID: venueID,
		Date:    dateStr,
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
