package domain

import (
	"time"

	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// SlotBlock административная блокировка слота.
// Не более одной на (VenueID, Date, Time); удаляется физически при разблокировке.
type SlotBlock struct {
	ID        string
	VenueID   int64
	Date      time.Time
	Time      types.TimeString
	Reason    *string
	CreatedBy int64
	CreatedAt time.Time
}

// SlotKey идентификатор слота (площадка, дата, время)
type SlotKey struct {
	VenueID int64
	Date    string // YYYY-MM-DD
	Time    types.TimeString
}

// Key возвращает ключ слота, к которому относится блокировка
func (b *SlotBlock) Key() SlotKey {
	return SlotKey{VenueID: b.VenueID, Date: FormatDate(b.Date), Time: b.Time}
}
