package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/dbmetrics"
	"github.com/m04kA/FitKits-SlotService/pkg/psqlbuilder"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// Колонки бронирования. TIME читается через to_char, см. venue.Repository.GetByID.
var bookingColumns = []string{
	"id",
	"venue_id",
	"user_id",
	"booking_date",
	"to_char(slot_time, 'HH24:MI')",
	"duration_minutes",
	"to_char(start_time, 'HH24:MI')",
	"to_char(end_time, 'HH24:MI')",
	"status",
	"courts",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями.
// Бронирования создаются внешним процессом, здесь только чтение и смена статуса администратором.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}

	return bookings[0], nil
}

// ListByVenueAndDate получает бронирования площадки на дату, отсортированные по времени.
// includeInactive=false исключает отменённые и возвращённые.
func (r *Repository) ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time, includeInactive bool) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.Eq{"booking_date": domain.NormalizeDate(date)}).
		OrderBy("COALESCE(start_time, slot_time) ASC", "id ASC")

	if !includeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings()})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByVenueAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByVenueAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListBookedDates возвращает даты периода [from, to], в которых есть хотя бы одно активное бронирование
func (r *Repository) ListBookedDates(ctx context.Context, venueID int64, from, to time.Time) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT booking_date").
		From("bookings").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.GtOrEq{"booking_date": domain.NormalizeDate(from)}).
		Where(squirrel.LtOrEq{"booking_date": domain.NormalizeDate(to)}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings()}).
		OrderBy("booking_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBookedDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBookedDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("%w: ListBookedDates - scan date: %v", ErrScanRow, err)
		}
		dates = append(dates, domain.NormalizeDate(d))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBookedDates - rows error: %v", ErrScanRow, err)
	}

	return dates, nil
}

// CountActiveAtSlot считает занятые корты активными бронированиями, начинающимися в [slotStart, slotEnd).
// Используется в строгом режиме блокировки внутри сериализуемой транзакции.
func (r *Repository) CountActiveAtSlot(ctx context.Context, venueID int64, date time.Time, slotStart, slotEnd types.TimeString) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(SUM(courts), 0)").
		From("bookings").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.Eq{"booking_date": domain.NormalizeDate(date)}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings()}).
		Where(squirrel.Expr("COALESCE(start_time, slot_time) >= ?", slotStart)).
		Where(squirrel.Expr("COALESCE(start_time, slot_time) < ?", slotEnd)).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveAtSlot - build select query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: CountActiveAtSlot - scan sum: %v", ErrScanRow, err)
	}

	return total, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var (
			booking              domain.Booking
			slotTime, start, end types.NullTimeString
			duration             sql.NullInt64
			createdAt, updatedAt sql.NullTime
		)

		err := rows.Scan(
			&booking.ID,
			&booking.VenueID,
			&booking.UserID,
			&booking.Date,
			&slotTime,
			&duration,
			&start,
			&end,
			&booking.Status,
			&booking.Courts,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		booking.Time, err = ToBookingTime(slotTime, duration, start, end)
		if err != nil {
			// Строку без времени нельзя отнести к слоту; bookings_time_shape_check не пропускает такие записи
			continue
		}

		booking.Date = domain.NormalizeDate(booking.Date)
		booking.CreatedAt = createdAt.Time
		booking.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// ToBookingTime собирает время бронирования из строки БД.
// Пара start_time/end_time приоритетнее старой формы slot_time + duration_minutes.
// Противоречивые конец или длительность не ошибка: остаётся только время начала.
func ToBookingTime(slotTime types.NullTimeString, duration sql.NullInt64, start, end types.NullTimeString) (domain.BookingTime, error) {
	if start.Valid && end.Valid {
		if bt, err := domain.NewRangeBookingTime(start.Time, end.Time); err == nil {
			return bt, nil
		}
		return domain.NewStartBookingTime(start.Time), nil
	}
	if slotTime.Valid {
		if bt, err := domain.NewSlotBookingTime(slotTime.Time, int(duration.Int64)); err == nil {
			return bt, nil
		}
		return domain.NewStartBookingTime(slotTime.Time), nil
	}
	return domain.BookingTime{}, ErrInvalidTimeShape
}

func inactiveStatusStrings() []string {
	out := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		out[i] = string(s)
	}
	return out
}
