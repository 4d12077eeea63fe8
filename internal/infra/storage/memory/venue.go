package memory

import (
	"context"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	venueRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/venue"
)

// VenueRepository площадки в памяти
type VenueRepository struct {
	store *Store
}

// GetByID получает площадку по ID
func (r *VenueRepository) GetByID(_ context.Context, id int64) (*domain.Venue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	v, ok := r.store.venues[id]
	if !ok {
		return nil, venueRepo.ErrVenueNotFound
	}
	if v.SlotGranularityMinutes != nil {
		g := *v.SlotGranularityMinutes
		v.SlotGranularityMinutes = &g
	}
	return &v, nil
}
