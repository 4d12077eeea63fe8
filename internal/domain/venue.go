package domain

import "github.com/m04kA/FitKits-SlotService/pkg/types"

// Venue площадка (спортивный объект). Сервис только читает площадки.
type Venue struct {
	ID          int64
	OwnerID     int64
	Name        string
	OpeningTime types.TimeString
	ClosingTime types.TimeString
	Capacity    int // Количество кортов, доступных в одном слоте
	IsActive    bool

	// SlotGranularityMinutes шаг слотов площадки, nil - шаг сервиса по умолчанию
	SlotGranularityMinutes *int
}

// Granularity возвращает шаг слотов площадки или defaultMinutes
func (v *Venue) Granularity(defaultMinutes int) int {
	if v.SlotGranularityMinutes != nil && *v.SlotGranularityMinutes > 0 {
		return *v.SlotGranularityMinutes
	}
	return defaultMinutes
}

// HasValidHours true, если время открытия строго раньше закрытия
func (v *Venue) HasValidHours() bool {
	return v.OpeningTime.IsBefore(v.ClosingTime)
}

// IsOwnedBy true, если пользователь владеет площадкой
func (v *Venue) IsOwnedBy(userID int64) bool {
	return v.OwnerID == userID
}
