package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerHour = 60
	// MinutesPerDay верхняя граница времени суток, "24:00" допустимо как время закрытия
	MinutesPerDay = 24 * minutesPerHour
)

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("time overflows the day")
)

// TimeString время суток с точностью до минуты (HH:MM).
// Хранится как количество минут от полуночи, поэтому вся арифметика целочисленная.
type TimeString struct {
	minutes int
}

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*minutesPerHour + t.Minute()}
}

// NewTimeStringFromMinutes создает TimeString из минут от полуночи
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > MinutesPerDay {
		return TimeString{}, fmt.Errorf("%w: %d minutes", ErrTimeOverflow, minutes)
	}
	return TimeString{minutes: minutes}, nil
}

// NewTimeStringFromString парсит строку вида "HH:MM" или "HH:MM:SS"
func NewTimeStringFromString(s string) (TimeString, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes >= minutesPerHour {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if hours == 24 && minutes != 0 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	// Секунды допускаются только нулевыми (так Postgres отдает TIME)
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(strings.SplitN(parts[2], ".", 2)[0])
		if err != nil || seconds != 0 {
			return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
		}
	}

	return TimeString{minutes: hours*minutesPerHour + minutes}, nil
}

// MustTimeString парсит строку и паникует при ошибке. Только для констант и тестов.
func MustTimeString(s string) TimeString {
	t, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Minutes возвращает количество минут от полуночи
func (t TimeString) Minutes() int {
	return t.minutes
}

// String возвращает время в формате HH:MM
func (t TimeString) String() string {
	return fmt.Sprintf("%02d:%02d", t.minutes/minutesPerHour, t.minutes%minutesPerHour)
}

// AddMinutes сдвигает время на указанное количество минут
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	return NewTimeStringFromMinutes(t.minutes + minutes)
}

// IsBefore true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

// IsAfter true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

// Equal true, если время совпадает
func (t TimeString) Equal(other TimeString) bool {
	return t.minutes == other.minutes
}

// MarshalJSON сериализует время как "HH:MM"
func (t TimeString) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON разбирает строку "HH:MM"
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeString, err)
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan реализует sql.Scanner для колонок типа TIME
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case time.Time:
		*t = NewTimeString(v)
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeString, src)
	}
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	return t.String(), nil
}

// NullTimeString TimeString, допускающий NULL в БД
type NullTimeString struct {
	Time  TimeString
	Valid bool
}

// Scan реализует sql.Scanner
func (n *NullTimeString) Scan(src interface{}) error {
	if src == nil {
		n.Time, n.Valid = TimeString{}, false
		return nil
	}
	n.Valid = true
	return n.Time.Scan(src)
}

// Value реализует driver.Valuer
func (n NullTimeString) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time.Value()
}
