package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getCapacityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_capacity"
	listAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_appointments"
	updateAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment"
	updateCapacityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	capacityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/capacitybus"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	capacityService "github.com/m04kA/SMC-AppointmentService/internal/service/capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	updateAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/update_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/retry"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const poolStatsInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Метрики. Интерфейсы заполняются только при включённых метриках,
	// иначе в компоненты уходит nil без типа
	var (
		metricsCollector *metrics.Metrics
		dbRecorder       dbmetrics.Recorder
		engineRecorder   scheduling.Recorder
		cacheRecorder    capacityService.CacheRecorder
		httpRecorder     middleware.HTTPRecorder
	)
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
		dbRecorder = metricsCollector
		engineRecorder = metricsCollector
		cacheRecorder = metricsCollector
		httpRecorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	dialect, err := sqlbuilder.ParseDialect(cfg.Database.Driver)
	if err != nil {
		log.Fatal("Invalid database driver: %v", err)
	}
	dsn := cfg.Database.DSN()
	if dialect == sqlbuilder.SQLite {
		dsn = storage.SQLiteDSN(cfg.Database.Path)
	}

	db, err := storage.Open(ctx, storage.Options{
		Dialect:         dialect,
		DSN:             dsn,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		Migrate:         cfg.Database.Migrate,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Successfully connected to database (driver=%s, migrate=%t)", dialect, cfg.Database.Migrate)

	wrappedDB := dbmetrics.Wrap(db, dbRecorder)
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		wrappedDB.CollectPoolStats(poolStatsInterval, stopMetricsCh)
		log.Info("Database metrics collection started")
	}

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB, dialect, cfg.Scheduling.LockTimeout())
	capacityRepository := capacityRepo.NewRepository(wrappedDB, dialect)

	if err := capacityRepository.EnsureSystemDefault(ctx, cfg.Scheduling.DefaultMaxOverlap); err != nil {
		log.Fatal("Failed to seed system capacity default: %v", err)
	}

	txMgr := txmanager.NewTransactionManager(wrappedDB, storage.Isolation(dialect))

	// Кэш лимитов и рассылка инвалидаций
	resolver := capacityService.NewResolver(capacityRepository, cfg.Scheduling.CapacityCacheTTL(), cacheRecorder, log)

	var publisher capacityService.Publisher
	if cfg.Redis.Enabled {
		bus, err := capacitybus.NewBus(ctx, cfg.Redis.URL, cfg.Redis.Channel, log.With("component", "capacitybus"))
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer bus.Close()
		publisher = bus
		go bus.Run(ctx, resolver)
		log.Info("Capacity invalidation bus enabled (channel=%s)", cfg.Redis.Channel)
	}

	// Сервисы
	engine := scheduling.NewEngine(
		appointmentRepository,
		resolver,
		txMgr,
		engineRecorder,
		log.With("component", "scheduling"),
		scheduling.Config{
			Retry: retry.Policy{
				MaxAttempts: cfg.Scheduling.MaxAttempts,
				BaseDelay:   cfg.Scheduling.BaseBackoff(),
				MaxDelay:    cfg.Scheduling.MaxBackoff(),
			},
			ConflictListLimit: cfg.Scheduling.ConflictListLimit,
		},
	)
	appointmentSvc := appointmentsService.NewService(appointmentRepository, log)
	capacitySvc := capacityService.NewService(capacityRepository, resolver, publisher, log)

	// Use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(engine, log)
	updateAppointmentUseCase := updateAppointmentUC.NewUseCase(appointmentRepository, engine, log)

	// Handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	updateAppointment := updateAppointmentHandler.NewHandler(updateAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(appointmentSvc, log)
	getCapacity := getCapacityHandler.NewHandler(capacitySvc, log)
	updateCapacity := updateCapacityHandler.NewHandler(capacitySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(httpRecorder))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		log.Info("Rate limit enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// --- Записи ---
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", updateAppointment.Handle).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// --- Лимиты одновременных записей ---
	api.HandleFunc("/services/{serviceId}/capacity", getCapacity.HandleService).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}/capacity", updateCapacity.HandleService).Methods(http.MethodPut)
	api.HandleFunc("/teams/{teamId}/capacity", getCapacity.HandleTeam).Methods(http.MethodGet)
	api.HandleFunc("/teams/{teamId}/capacity", updateCapacity.HandleTeam).Methods(http.MethodPut)
	api.HandleFunc("/settings/capacity", getCapacity.HandleSystem).Methods(http.MethodGet)
	api.HandleFunc("/settings/capacity", updateCapacity.HandleSystem).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
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
