package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRefunded  BookingStatus = "refunded"
)

// ErrInvalidBookingTime возвращается при некорректном времени бронирования
var ErrInvalidBookingTime = errors.New("invalid booking time")

var midnight = types.MustTimeString("24:00")

// BookingTimeKind форма, в которой хранится время бронирования
type BookingTimeKind int

const (
	// BookingTimeSlot старая форма: slot_time + duration_minutes
	BookingTimeSlot BookingTimeKind = iota + 1
	// BookingTimeRange новая форма: start_time + end_time
	BookingTimeRange
)

// BookingTime время бронирования в одной из двух форм.
// Вызывающий код работает только с Normalize(), не разбирая форму сам.
type BookingTime struct {
	kind            BookingTimeKind
	start           types.TimeString
	end             types.TimeString
	durationMinutes int
}

// NewSlotBookingTime старая форма бронирования (время слота и длительность)
func NewSlotBookingTime(slotTime types.TimeString, durationMinutes int) (BookingTime, error) {
	if durationMinutes < 0 {
		return BookingTime{}, fmt.Errorf("%w: negative duration %d", ErrInvalidBookingTime, durationMinutes)
	}
	return BookingTime{kind: BookingTimeSlot, start: slotTime, durationMinutes: durationMinutes}, nil
}

// NewRangeBookingTime новая форма бронирования (начало и конец).
// Конец "00:00" после ненулевого начала означает полночь следующих суток (24:00).
func NewRangeBookingTime(start, end types.TimeString) (BookingTime, error) {
	if end.Minutes() == 0 && start.Minutes() > 0 {
		end = midnight
	}
	if !start.IsBefore(end) {
		return BookingTime{}, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidBookingTime, start, end)
	}
	return BookingTime{kind: BookingTimeRange, start: start, end: end}, nil
}

// NewStartBookingTime время, известное только началом: длительность или конец в записи
// противоречивы. Для подсчёта занятости достаточно начала.
func NewStartBookingTime(start types.TimeString) BookingTime {
	return BookingTime{kind: BookingTimeSlot, start: start}
}

// Kind форма хранения
func (b BookingTime) Kind() BookingTimeKind {
	return b.kind
}

// IsZero true, если время не задано ни в одной форме
func (b BookingTime) IsZero() bool {
	return b.kind == 0
}

// Normalize каноническое время суток бронирования - время начала
func (b BookingTime) Normalize() types.TimeString {
	return b.start
}

// End время окончания. Для старой формы без длительности совпадает с началом.
func (b BookingTime) End() (types.TimeString, error) {
	if b.kind == BookingTimeRange {
		return b.end, nil
	}
	return b.start.AddMinutes(b.durationMinutes)
}

// Booking бронирование корта. Создаётся внешним процессом, никогда не удаляется.
type Booking struct {
	ID      int64
	VenueID int64
	UserID  int64
	Date    time.Time
	Time    BookingTime
	Status  BookingStatus
	Courts  int // Сколько кортов занимает бронирование, обычно 1

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive true, если бронирование занимает корт
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled && b.Status != StatusRefunded
}

// ConsumedCourts количество занятых кортов (не меньше одного)
func (b *Booking) ConsumedCourts() int {
	if b.Courts <= 0 {
		return DefaultBookingCourts
	}
	return b.Courts
}

// CanTransitionTo проверяет допустимость перехода статуса администратором
func (b *Booking) CanTransitionTo(status BookingStatus) bool {
	if !b.IsActive() {
		return false
	}
	return status == StatusCancelled || status == StatusRefunded
}

// ParseBookingStatus проверяет строку статуса
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRefunded:
		return BookingStatus(s), true
	default:
		return "", false
	}
}
