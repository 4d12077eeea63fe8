package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	blockBatchHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/block_batch"
	blockSlotsHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/block_slots"
	getAvailabilityHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/get_booking"
	getMonthSummaryHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/get_month_summary"
	getVenueBookingsHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/get_venue_bookings"
	subscribeSlotEventsHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/subscribe_slot_events"
	unblockSlotHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/unblock_slot"
	updateBookingStatusHandler "github.com/m04kA/FitKits-SlotService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/FitKits-SlotService/internal/api/middleware"
	"github.com/m04kA/FitKits-SlotService/internal/config"
	"github.com/m04kA/FitKits-SlotService/internal/infra/cache/monthsummary"
	"github.com/m04kA/FitKits-SlotService/internal/infra/realtime"
	"github.com/m04kA/FitKits-SlotService/internal/integrations/authservice"
	bookingsService "github.com/m04kA/FitKits-SlotService/internal/service/bookings"
	calendarService "github.com/m04kA/FitKits-SlotService/internal/service/calendar"
	slotBlocksService "github.com/m04kA/FitKits-SlotService/internal/service/slotblocks"
	getAvailabilityUC "github.com/m04kA/FitKits-SlotService/internal/usecase/get_availability"
	"github.com/m04kA/FitKits-SlotService/pkg/jwtauth"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
	"github.com/m04kA/FitKits-SlotService/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting FitKits-SlotService...")
	log.Info("Configuration loaded from %s", *configPath)

	// Инициализируем метрики (если включены). nil-коллектор безопасен: все методы его пропускают.
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище: Postgres или память
	stopMetricsCh := make(chan struct{})
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to open storage: %v", err)
	}
	defer store.close()

	// Кэш месячной сводки
	cache, closeCache := openMonthSummaryCache(cfg, metricsCollector, log)
	defer closeCache()

	// Хаб событий слотов
	var (
		hub      *realtime.Hub
		notifier slotBlocksService.Notifier
	)
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(realtime.Config{
			SendBuffer:     cfg.Realtime.SendBuffer,
			WriteTimeout:   time.Duration(cfg.Realtime.WriteTimeout) * time.Second,
			PingInterval:   time.Duration(cfg.Realtime.PingInterval) * time.Second,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}, metricsCollector, log)
		notifier = hub
		log.Info("Realtime slot events enabled")
	}

	// Определение вызывающего по токену
	var resolver middleware.CallerResolver
	switch cfg.Auth.Mode {
	case config.AuthModeRemote:
		resolver = authservice.NewClient(cfg.Auth.URL, time.Duration(cfg.Auth.Timeout)*time.Second, log)
		log.Info("Auth: remote resolver (url=%s timeout=%ds)", cfg.Auth.URL, cfg.Auth.Timeout)
	default:
		resolver = authservice.NewJWTResolver(jwtauth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer))
		log.Info("Auth: local JWT verification")
	}

	// Инициализируем сервисы
	slotBlocksSvc := slotBlocksService.NewService(
		store.venues,
		store.bookings,
		store.blocks,
		store.tx,
		cache,
		notifier,
		metricsCollector,
		slotBlocksService.Config{
			DefaultGranularityMinutes: cfg.Slots.DefaultGranularityMinutes,
			RejectWhenFullyBooked:     cfg.Blocking.RejectWhenFullyBooked,
		},
		log,
	)
	calendarSvc := calendarService.NewService(store.venues, store.bookings, store.blocks, cache, log)

	var bookingNotifier bookingsService.Notifier
	if hub != nil {
		bookingNotifier = hub
	}
	bookingSvc := bookingsService.NewService(store.bookings, store.venues, store.tx, cache, bookingNotifier, log)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		store.venues,
		store.bookings,
		store.blocks,
		cfg.Slots.DefaultGranularityMinutes,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getMonthSummary := getMonthSummaryHandler.NewHandler(calendarSvc, log)
	blockSlots := blockSlotsHandler.NewHandler(slotBlocksSvc, log)
	blockBatch := blockBatchHandler.NewHandler(slotBlocksSvc, log)
	unblockSlot := unblockSlotHandler.NewHandler(slotBlocksSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getVenueBookings := getVenueBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics(metricsCollector, log))

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := store.ping(ctx); err != nil {
			log.Warn("GET /healthz - storage unavailable: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, "хранилище недоступно")
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Сетка слотов площадки на дату
	api.HandleFunc("/venues/{venueId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Даты месяца с блокировками и бронированиями
	api.HandleFunc("/venues/{venueId}/month-summary", getMonthSummary.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют Authorization: Bearer)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(resolver, log))

	// --- Блокировки ---
	protected.HandleFunc("/venues/{venueId}/blocks", blockSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/venues/{venueId}/blocks", unblockSlot.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/blocks/batch", blockBatch.Handle).Methods(http.MethodPost)

	// --- Бронирования (администрирование площадки) ---
	protected.HandleFunc("/venues/{venueId}/bookings", getVenueBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/venues/{venueId}/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/venues/{venueId}/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// --- События слотов ---
	if hub != nil {
		subscribeSlotEvents := subscribeSlotEventsHandler.NewHandler(hub, store.venues, log)
		protected.HandleFunc("/venues/{venueId}/events", subscribeSlotEvents.Handle).Methods(http.MethodGet)
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(r)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
	if hub != nil {
		srv.RegisterOnShutdown(hub.Close)
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// openMonthSummaryCache Redis кэш или no-op, если кэш выключен
func openMonthSummaryCache(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (monthSummaryCache, func()) {
	if !cfg.Cache.Enabled {
		log.Info("Month summary cache disabled")
		return monthsummary.NopCache{}, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Недоступный Redis не мешает старту: ошибки кэша игнорируются при работе
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis is not reachable at %s: %v", cfg.Cache.RedisAddr, err)
	} else {
		log.Info("Month summary cache enabled (redis=%s ttl=%ds)", cfg.Cache.RedisAddr, cfg.Cache.TTLSeconds)
	}

	cache := monthsummary.NewRedisCache(rdb, time.Duration(cfg.Cache.TTLSeconds)*time.Second, cfg.Cache.Prefix, m)
	return cache, func() { _ = rdb.Close() }
}
