package get_availability

import (
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// Request модель запроса доступности слотов
type Request struct {
	VenueID int64     // ID площадки
	Date    time.Time // Дата (без времени)
}

// Response сетка слотов площадки на дату
type Response struct {
	VenueID            int64
	Date               time.Time
	OpeningTime        types.TimeString
	ClosingTime        types.TimeString
	Capacity           int
	GranularityMinutes int
	Slots              []Slot

	// OrphanedBlocks блокировки, время которых не совпадает ни с одним слотом текущей сетки
	OrphanedBlocks []*domain.SlotBlock
}

// Slot занятость одного слота
type Slot struct {
	Time         types.TimeString
	BookedCourts int
	Capacity     int
	IsBlocked    bool
	BlockReason  *string
	State        domain.SlotState
}
