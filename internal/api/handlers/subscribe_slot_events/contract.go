package subscribe_slot_events

import (
	"context"
	"net/http"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

type EventHub interface {
	Serve(w http.ResponseWriter, r *http.Request, venueID int64) error
}

type VenueRepository interface {
	GetByID(ctx context.Context, venueID int64) (*domain.Venue, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
