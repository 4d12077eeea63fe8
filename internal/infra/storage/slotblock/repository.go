package slotblock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/dbmetrics"
	"github.com/m04kA/FitKits-SlotService/pkg/psqlbuilder"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

const uniqueViolationCode = "23505"

var blockColumns = []string{
	"id",
	"venue_id",
	"block_date",
	"to_char(slot_time, 'HH24:MI')",
	"reason",
	"created_by",
	"created_at",
}

// Repository репозиторий блокировок слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает блокировку. Если слот уже заблокирован - ErrBlockExists, существующая запись не меняется.
// Заполняет ID (если пуст) и CreatedAt.
func (r *Repository) Create(ctx context.Context, block *domain.SlotBlock) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if block.ID == "" {
		block.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("slot_blocks").
		Columns("id", "venue_id", "block_date", "slot_time", "reason", "created_by").
		Values(
			block.ID,
			block.VenueID,
			domain.NormalizeDate(block.Date),
			block.Time,
			block.Reason,
			block.CreatedBy,
		).
		Suffix("ON CONFLICT (venue_id, block_date, slot_time) DO NOTHING RETURNING created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&block.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return ErrBlockExists
	}
	if err != nil {
		return fmt.Errorf("%w: Create - insert block: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByTuple получает блокировку слота
func (r *Repository) GetByTuple(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString) (*domain.SlotBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("slot_blocks").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.Eq{"block_date": domain.NormalizeDate(date)}).
		Where(squirrel.Eq{"slot_time": slotTime}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByTuple - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTuple - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks, err := r.scanBlocks(rows)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrBlockNotFound
	}

	return blocks[0], nil
}

// UpdateReason обновляет причину существующей блокировки и возвращает её
func (r *Repository) UpdateReason(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString, reason *string) (*domain.SlotBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_blocks").
		Set("reason", reason).
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.Eq{"block_date": domain.NormalizeDate(date)}).
		Where(squirrel.Eq{"slot_time": slotTime}).
		Suffix("RETURNING " + strings.Join(blockColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateReason - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateReason - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks, err := r.scanBlocks(rows)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrBlockNotFound
	}

	return blocks[0], nil
}

// Delete удаляет блокировку слота. false, если блокировки не было.
func (r *Repository) Delete(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_blocks").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.Eq{"block_date": domain.NormalizeDate(date)}).
		Where(squirrel.Eq{"slot_time": slotTime}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// ListByVenueAndDate получает блокировки площадки на дату, отсортированные по времени
func (r *Repository) ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time) ([]*domain.SlotBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("slot_blocks").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.Eq{"block_date": domain.NormalizeDate(date)}).
		OrderBy("slot_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByVenueAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByVenueAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBlocks(rows)
}

// ListBlockedDates возвращает даты периода [from, to], в которых есть хотя бы одна блокировка
func (r *Repository) ListBlockedDates(ctx context.Context, venueID int64, from, to time.Time) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT block_date").
		From("slot_blocks").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.GtOrEq{"block_date": domain.NormalizeDate(from)}).
		Where(squirrel.LtOrEq{"block_date": domain.NormalizeDate(to)}).
		OrderBy("block_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBlockedDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlockedDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("%w: ListBlockedDates - scan date: %v", ErrScanRow, err)
		}
		dates = append(dates, domain.NormalizeDate(d))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBlockedDates - rows error: %v", ErrScanRow, err)
	}

	return dates, nil
}

// scanBlocks сканирует результаты запроса в слайс блокировок
func (r *Repository) scanBlocks(rows *sql.Rows) ([]*domain.SlotBlock, error) {
	blocks := make([]*domain.SlotBlock, 0)

	for rows.Next() {
		var (
			block  domain.SlotBlock
			reason sql.NullString
		)

		err := rows.Scan(
			&block.ID,
			&block.VenueID,
			&block.Date,
			&block.Time,
			&reason,
			&block.CreatedBy,
			&block.CreatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBlocks - scan row: %v", ErrScanRow, err)
		}

		block.Date = domain.NormalizeDate(block.Date)
		if reason.Valid {
			block.Reason = &reason.String
		}

		blocks = append(blocks, &block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBlocks - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// isUniqueViolation true для нарушения уникальности (код 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}
