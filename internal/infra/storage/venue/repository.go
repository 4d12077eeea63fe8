package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/dbmetrics"
	"github.com/m04kA/FitKits-SlotService/pkg/psqlbuilder"
)

// Repository репозиторий площадок (только чтение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает площадку по ID.
// Время читается через to_char: lib/pq не разбирает TIME '24:00:00' в time.Time.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"owner_id",
		"name",
		"to_char(opening_time, 'HH24:MI')",
		"to_char(closing_time, 'HH24:MI')",
		"capacity",
		"is_active",
		"slot_granularity_minutes",
	).
		From("venues").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		v           domain.Venue
		granularity sql.NullInt64
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&v.ID,
		&v.OwnerID,
		&v.Name,
		&v.OpeningTime,
		&v.ClosingTime,
		&v.Capacity,
		&v.IsActive,
		&granularity,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan venue: %v", ErrScanRow, err)
	}

	if granularity.Valid {
		g := int(granularity.Int64)
		v.SlotGranularityMinutes = &g
	}

	return &v, nil
}
