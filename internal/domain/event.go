package domain

import "time"

// SlotEventKind тип изменения слотов
type SlotEventKind string

const (
	SlotEventBlocked   SlotEventKind = "blocked"
	SlotEventUnblocked SlotEventKind = "unblocked"
	SlotEventBooking   SlotEventKind = "booking_updated"
)

// SlotEvent уведомление об изменении слотов площадки на дату.
// Подписчики по нему перезапрашивают доступность, само событие состояние не несёт.
type SlotEvent struct {
	Kind       SlotEventKind `json:"kind"`
	VenueID    int64         `json:"venueId"`
	Date       string        `json:"date"`
	Times      []string      `json:"times,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
