package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// seedFile формат файла начальных данных для драйвера memory
type seedFile struct {
	Venues []struct {
		ID          int64            `json:"id"`
		OwnerID     int64            `json:"ownerId"`
		Name        string           `json:"name"`
		OpeningTime types.TimeString `json:"openingTime"`
		ClosingTime types.TimeString `json:"closingTime"`
		Capacity    int              `json:"capacity"`
		IsActive    bool             `json:"isActive"`
		Granularity *int             `json:"slotGranularityMinutes,omitempty"`
	} `json:"venues"`
	Bookings []struct {
		ID       int64             `json:"id"`
		VenueID  int64             `json:"venueId"`
		UserID   int64             `json:"userId"`
		Date     string            `json:"date"`
		SlotTime *types.TimeString `json:"slotTime,omitempty"`
		Duration int               `json:"durationMinutes,omitempty"`
		Start    *types.TimeString `json:"startTime,omitempty"`
		End      *types.TimeString `json:"endTime,omitempty"`
		Status   string            `json:"status"`
		Courts   int               `json:"courts"`
	} `json:"bookings"`
}

// LoadSeed загружает площадки и бронирования из JSON файла
func (s *Store) LoadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, v := range seed.Venues {
		s.PutVenue(domain.Venue{
			ID:                     v.ID,
			OwnerID:                v.OwnerID,
			Name:                   v.Name,
			OpeningTime:            v.OpeningTime,
			ClosingTime:            v.ClosingTime,
			Capacity:               v.Capacity,
			IsActive:               v.IsActive,
			SlotGranularityMinutes: v.Granularity,
		})
	}

	for _, b := range seed.Bookings {
		date, err := domain.ParseDate(b.Date)
		if err != nil {
			return fmt.Errorf("booking id=%d: %w", b.ID, err)
		}

		status, ok := domain.ParseBookingStatus(b.Status)
		if !ok {
			return fmt.Errorf("booking id=%d: unknown status %q", b.ID, b.Status)
		}

		var bookingTime domain.BookingTime
		switch {
		case b.Start != nil && b.End != nil:
			bookingTime, err = domain.NewRangeBookingTime(*b.Start, *b.End)
		case b.SlotTime != nil:
			bookingTime, err = domain.NewSlotBookingTime(*b.SlotTime, b.Duration)
		default:
			err = domain.ErrInvalidBookingTime
		}
		if err != nil {
			return fmt.Errorf("booking id=%d: %w", b.ID, err)
		}

		s.PutBooking(domain.Booking{
			ID:      b.ID,
			VenueID: b.VenueID,
			UserID:  b.UserID,
			Date:    date,
			Time:    bookingTime,
			Status:  status,
			Courts:  b.Courts,
		})
	}

	return nil
}
