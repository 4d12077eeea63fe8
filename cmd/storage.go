package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/config"
	"github.com/m04kA/FitKits-SlotService/internal/domain"
	bookingRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/booking"
	"github.com/m04kA/FitKits-SlotService/internal/infra/storage/memory"
	slotBlockRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/slotblock"
	venueRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/venue"
	"github.com/m04kA/FitKits-SlotService/pkg/dbmetrics"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
	"github.com/m04kA/FitKits-SlotService/pkg/metrics"
	"github.com/m04kA/FitKits-SlotService/pkg/txmanager"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

type venueStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time, includeInactive bool) ([]*domain.Booking, error)
	ListBookedDates(ctx context.Context, venueID int64, from, to time.Time) ([]time.Time, error)
	CountActiveAtSlot(ctx context.Context, venueID int64, date time.Time, slotStart, slotEnd types.TimeString) (int, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

type slotBlockStore interface {
	Create(ctx context.Context, block *domain.SlotBlock) error
	GetByTuple(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString) (*domain.SlotBlock, error)
	UpdateReason(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString, reason *string) (*domain.SlotBlock, error)
	Delete(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString) (bool, error)
	ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time) ([]*domain.SlotBlock, error)
	ListBlockedDates(ctx context.Context, venueID int64, from, to time.Time) ([]time.Time, error)
}

type txRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type monthSummaryCache interface {
	Get(ctx context.Context, venueID int64, year int, month time.Month) (*domain.MonthSummary, bool, error)
	Generation(ctx context.Context, venueID int64, year int, month time.Month) (int64, error)
	Set(ctx context.Context, summary *domain.MonthSummary, generation int64) error
	Invalidate(ctx context.Context, venueID int64, year int, month time.Month) error
}

// storage репозитории выбранного драйвера
type storage struct {
	venues   venueStore
	bookings bookingStore
	blocks   slotBlockStore
	tx       txRunner
	ping     func(ctx context.Context) error
	close    func()
}

func openStorage(cfg *config.Config, m *metrics.Metrics, stop <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return openMemoryStorage(cfg, log)
	}
	return openPostgresStorage(cfg, m, stop, log)
}

func openPostgresStorage(cfg *config.Config, m *metrics.Metrics, stop <-chan struct{}, log *logger.Logger) (*storage, error) {
	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка снимает метрики запросов; без метрик работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, m, stop)

	return &storage{
		venues:   venueRepo.NewRepository(wrappedDB),
		bookings: bookingRepo.NewRepository(wrappedDB),
		blocks:   slotBlockRepo.NewRepository(wrappedDB),
		tx:       txmanager.NewTransactionManager(wrappedDB),
		ping:     wrappedDB.PingContext,
		close:    func() { _ = db.Close() },
	}, nil
}

func openMemoryStorage(cfg *config.Config, log *logger.Logger) (*storage, error) {
	store := memory.NewStore()
	if cfg.Storage.SeedFile != "" {
		if err := store.LoadSeed(cfg.Storage.SeedFile); err != nil {
			return nil, fmt.Errorf("failed to load seed %s: %w", cfg.Storage.SeedFile, err)
		}
		log.Info("In-memory storage seeded from %s", cfg.Storage.SeedFile)
	}
	log.Warn("Using in-memory storage: data is lost on restart")

	return &storage{
		venues:   store.Venues(),
		bookings: store.Bookings(),
		blocks:   store.SlotBlocks(),
		tx:       memory.NewTxManager(),
		ping:     func(context.Context) error { return nil },
		close:    func() {},
	}, nil
}
