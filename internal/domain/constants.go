package domain

// Значения по умолчанию
const (
	DefaultSlotGranularityMinutes = 30
	DefaultBookingCourts          = 1
)

// Ограничения бизнес-валидации
const (
	MinSlotGranularityMinutes = 5
	MaxSlotGranularityMinutes = 240
	MaxBlockReasonLength      = 500
	MaxBatchBlockItems        = 500
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses статусы, не занимающие корт.
// Используются для фильтрации при подсчёте занятости слотов и в месячной сводке.
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusRefunded,
}

// ActiveStatuses статусы, занимающие корт
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
