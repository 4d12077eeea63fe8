package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate возвращается при некорректной дате
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// ParseDate парсит дату YYYY-MM-DD в полночь UTC
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// NormalizeDate отбрасывает время суток, сохраняя календарную дату
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate форматирует дату как YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// MonthRange возвращает первый и последний день месяца
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}
