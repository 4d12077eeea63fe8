package get_availability

import (
	"github.com/m04kA/FitKits-SlotService/internal/domain"
	getAvailability "github.com/m04kA/FitKits-SlotService/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	VenueID            int64           `json:"venueId"`
	Date               string          `json:"date"`
	OpeningTime        string          `json:"openingTime"`
	ClosingTime        string          `json:"closingTime"`
	Capacity           int             `json:"capacity"`
	GranularityMinutes int             `json:"granularityMinutes"`
	Slots              []Slot          `json:"slots"`
	OrphanedBlocks     []OrphanedBlock `json:"orphanedBlocks,omitempty"`
}

// Slot занятость слота
type Slot struct {
	Time         string  `json:"time"` // "10:00"
	BookedCourts int     `json:"bookedCourts"`
	Capacity     int     `json:"capacity"`
	IsBlocked    bool    `json:"isBlocked"`
	BlockReason  *string `json:"blockReason,omitempty"`
	State        string  `json:"state"`
}

// OrphanedBlock блокировка вне текущей сетки слотов
type OrphanedBlock struct {
	Time   string  `json:"time"`
	Reason *string `json:"reason,omitempty"`
}

// ToUseCaseRequest формирует запрос к use case
func ToUseCaseRequest(venueID int64, dateStr string) (*getAvailability.Request, error) {
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return &getAvailability.Request{VenueID: venueID, Date: date}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP ответ
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]Slot, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, Slot{
			Time:         s.Time.String(),
			BookedCourts: s.BookedCourts,
			Capacity:     s.Capacity,
			IsBlocked:    s.IsBlocked,
			BlockReason:  s.BlockReason,
			State:        string(s.State),
		})
	}

	var orphaned []OrphanedBlock
	for _, b := range resp.OrphanedBlocks {
		orphaned = append(orphaned, OrphanedBlock{Time: b.Time.String(), Reason: b.Reason})
	}

	return &AvailabilityResponse{
		VenueID:            resp.VenueID,
		Date:               domain.FormatDate(resp.Date),
		OpeningTime:        resp.OpeningTime.String(),
		ClosingTime:        resp.ClosingTime.String(),
		Capacity:           resp.Capacity,
		GranularityMinutes: resp.GranularityMinutes,
		Slots:              slots,
		OrphanedBlocks:     orphaned,
	}
}
