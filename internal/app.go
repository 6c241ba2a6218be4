package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"listing-service/internal/adapters/imaging"
	token_adapter "listing-service/internal/adapters/jwt"
	logger_adapter "listing-service/internal/adapters/logger"
	"listing-service/internal/adapters/metrics"
	"listing-service/internal/adapters/notifier"
	objectstore_client "listing-service/internal/adapters/objectstore"
	postgres_adapter "listing-service/internal/adapters/postgres"
	postgrest_client "listing-service/internal/adapters/postgrest"
	rabbitmq_adapter "listing-service/internal/adapters/rabbitmq"
	"listing-service/internal/adapters/rest"
	"listing-service/internal/configs"
	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"listing-service/internal/core/usecase"
	fluentlogger "listing-service/pkg/fluent_logger"
	"listing-service/pkg/postgres"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"
	"listing-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server

	refreshUC       usecases_port.RefreshListingsUseCasePort
	changesListener port.EventListenerPort

	connManager  *rabbitmq_common.ConnectionManager
	publisher    *rabbitmq_producer.Publisher
	baseLogger   port.LoggerPort
	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLevel, stdoutLevelKnown := parseLogLevel(appConfig.StdoutLogger.Level)
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    stdoutLevel,
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
			Timeout:   3 * time.Second,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentLevel, _ := parseLogLevel(appConfig.FluentBit.Level)
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, fluentLevel)
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})
	if !stdoutLevelKnown {
		appLogger.Warn("Unknown stdout log level, defaulting to info", port.Fields{"level": appConfig.StdoutLogger.Level})
	}
	for _, warning := range appConfig.Warnings {
		appLogger.Warn("Configuration warning", port.Fields{"detail": warning})
	}

	application := &App{
		config:       appConfig,
		baseLogger:   baseLogger,
		logger:       appLogger,
		fluentClient: fluentClient,
	}
	if err := application.wire(); err != nil {
		application.closeResources()
		return nil, err
	}
	return application, nil
}

// wire собирает адаптеры и use case'ы. При ошибке уже созданные ресурсы
// закрывает closeResources.
func (a *App) wire() error {
	cfg := a.config
	appLogger := a.logger

	// --- 2. БД (источник данных и/или админка) ---
	if cfg.Database.URL != "" {
		dbPool, err := postgres.NewClient(context.Background(), postgres.Config{
			DatabaseURL:    cfg.Database.URL,
			MaxConns:       int32(cfg.Database.MaxConns),
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.dbPool = dbPool
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)
	}

	// --- 3. ИСТОЧНИК ДАННЫХ КАТАЛОГА ---
	var source port.ListingSourcePort
	switch cfg.ListingSource {
	case configs.SourcePostgREST:
		restSource, err := postgrest_client.NewPostgRESTListingSource(postgrest_client.Config{
			BaseURL: cfg.PostgREST.URL,
			APIKey:  cfg.PostgREST.APIKey,
			Timeout: cfg.Aggregator.FetchTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create PostgREST source: %w", err)
		}
		source = restSource
	default:
		pgSource, err := postgres_adapter.NewPostgresListingSource(a.dbPool)
		if err != nil {
			return fmt.Errorf("failed to create postgres source: %w", err)
		}
		source = pgSource
	}
	appLogger.Info("Listing source initialized", port.Fields{"source": cfg.ListingSource})

	// --- 4. АГРЕГАТОР И ПУБЛИЧНЫЕ USE CASES ---
	aggregatorMetrics := metrics.New(nil)
	aggregator := usecase.NewListingAggregator(source, aggregatorMetrics).WithFetchTimeout(cfg.Aggregator.FetchTimeout)

	links, err := usecase.NewBookingLinkBuilder(cfg.WhatsAppNumber)
	if err != nil {
		return fmt.Errorf("invalid WhatsApp number: %w", err)
	}

	getTreeUC := usecase.NewGetListingTreeUseCase(aggregator)
	getBranchUC := usecase.NewGetBranchUseCase(getTreeUC)
	apartmentDetailsUC := usecase.NewGetApartmentDetailsUseCase(source, links)
	roomDetailsUC := usecase.NewGetRoomDetailsUseCase(source, links)
	bookingUC := usecase.NewBuildBookingLinkUseCase(links, apartmentDetailsUC, roomDetailsUC)
	refreshUC := usecase.NewRefreshListingsUseCase(aggregator)
	handleChangedUC := usecase.NewHandleListingChangedUseCase(refreshUC)
	a.refreshUC = refreshUC

	// --- 5. СОБЫТИЯ ОБ ИЗМЕНЕНИЯХ ---
	var events port.ListingEventsPort
	if cfg.RabbitMQ.Enabled {
		if err := a.wireRabbitMQ(handleChangedUC); err != nil {
			return err
		}
		queueEvents, err := rabbitmq_adapter.NewListingEventsQueueAdapter(a.publisher, constants.RoutingKeyListingChanged)
		if err != nil {
			return err
		}
		events = queueEvents
	} else {
		inProcess := notifier.NewInProcessNotifier(handleChangedUC, a.baseLogger, 100)
		events = inProcess
		a.changesListener = inProcess
		appLogger.Info("RabbitMQ disabled, using in-process change notifier", nil)
	}

	// --- 6. АДМИНКА ---
	var adminHandler *rest.AdminHandler
	var adminAuth func(http.Handler) http.Handler
	if cfg.AdminEnabled() && a.dbPool != nil {
		repo, err := postgres_adapter.NewPostgresListingRepository(a.dbPool)
		if err != nil {
			return fmt.Errorf("failed to create listing repository: %w", err)
		}
		profiles, err := postgres_adapter.NewPostgresProfileRepository(a.dbPool)
		if err != nil {
			return fmt.Errorf("failed to create profile repository: %w", err)
		}
		tokenSvc, err := token_adapter.NewTokenService(cfg.JWTSecret)
		if err != nil {
			return err
		}

		var uploadUC usecases_port.UploadImageUseCasePort
		if cfg.ImageUploadEnabled() {
			storage, err := objectstore_client.NewStorageClient(objectstore_client.Config{
				BaseURL:    cfg.Storage.URL,
				ServiceKey: cfg.Storage.ServiceKey,
				Bucket:     cfg.Storage.Bucket,
			})
			if err != nil {
				return fmt.Errorf("failed to create storage client: %w", err)
			}
			resizer := imaging.NewResizer(imaging.DefaultMaxWidth, imaging.DefaultJPEGQuality)
			uploadUC = usecase.NewUploadImageUseCase(resizer, storage, events)
		} else {
			appLogger.Warn("STORAGE_URL or STORAGE_SERVICE_KEY is not set, image upload is disabled", nil)
		}

		adminHandler = rest.NewAdminHandler(
			usecase.NewManageBranchesUseCase(repo, events),
			usecase.NewManageApartmentsUseCase(repo, source, events),
			usecase.NewManageRoomsUseCase(repo, source, events),
			uploadUC,
			refreshUC,
		)
		adminAuth = rest.NewAdminAuthMiddleware(usecase.NewAuthorizeAdminUseCase(tokenSvc, profiles))
		appLogger.Info("Admin API enabled", nil)
	}

	// --- 7. REST ---
	listingHandler := rest.NewListingHandler(aggregator, getTreeUC, getBranchUC, apartmentDetailsUC, roomDetailsUC, bookingUC)
	a.apiServer = rest.NewServer(rest.ServerConfig{
		Port:           cfg.Rest.PORT,
		AllowedOrigins: cfg.Rest.AllowedOrigins,
	}, listingHandler, adminHandler, adminAuth, a.baseLogger)

	appLogger.Info("All components initialized.", nil)
	return nil
}

func (a *App) wireRabbitMQ(handleChangedUC usecases_port.HandleListingChangedUseCasePort) error {
	cfg := a.config
	baseConfig := rabbitmq_common.Config{URL: cfg.RabbitMQ.URL}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(baseConfig, 5*time.Second, connManagerBridge)
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager

	publisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   baseConfig,
		ExchangeName:             constants.ListingsExchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_publisher"})),
	}, connManager)
	if err != nil {
		return fmt.Errorf("failed to create listing events publisher: %w", err)
	}
	a.publisher = publisher

	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:       baseConfig,
		QueueName:    constants.QueueListingChanges,
		DeclareQueue: true,
		DurableQueue: true,

		ExchangeNameForBind:    constants.ListingsExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    "topic",
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeyListingChanged,

		// Обновления дерева выполняются по одному
		PrefetchCount: 1,
		ConsumerTag:   cfg.AppName + "-listing-changes",

		EnableRetryMechanism: true,
		RetryExchange:        constants.RetryExchange,
		RetryQueue:           constants.WaitQueue,
		RetryTTL:             constants.RetryTTL,
		FinalDLXExchange:     constants.FinalDLXExchange,
		FinalDLQ:             constants.FinalDLQ,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
		MaxRetries:           constants.MaxRetries,
	}
	listener, err := rabbitmq_adapter.NewListingChangesConsumerAdapter(consumerCfg, handleChangedUC, a.baseLogger, connManager)
	if err != nil {
		a.logger.Error("Failed to create listing changes consumer", err, nil)
		return fmt.Errorf("failed to create listing changes consumer: %w", err)
	}
	a.changesListener = listener
	a.logger.Info("RabbitMQ publisher and listener initialized.", nil)
	return nil
}

func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if a.apiServer != nil {
			if err := a.apiServer.Stop(shutdownCtx); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)
	errorsCh := make(chan error, 2)

	go func() {
		if err := a.apiServer.Start(); err != nil {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	if a.changesListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener": "Listing Changes Listener"})
			listenerLogger.Info("Starting listener...", nil)
			if err := a.changesListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("listing changes listener error: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully.", nil)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.runRefreshLoop(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		runErr = err
	}

	cancelApp()
	return runErr
}

// runRefreshLoop прогревает дерево при старте и перезагружает его по таймеру
func (a *App) runRefreshLoop(ctx context.Context) {
	refreshLogger := a.baseLogger.WithFields(port.Fields{"component": "refresh_loop"})
	refresh := func(reason string) {
		loadCtx := contextkeys.ContextWithLogger(ctx, refreshLogger)
		if _, err := a.refreshUC.Execute(loadCtx, reason); err != nil && ctx.Err() == nil {
			refreshLogger.Error("Background refresh failed", err, port.Fields{"reason": reason})
		}
	}

	refresh("startup")

	interval := a.config.Aggregator.RefreshInterval
	if interval <= 0 {
		refreshLogger.Info("Periodic refresh disabled", nil)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh("timer")
		}
	}
}

func (a *App) closeResources() {
	if a.changesListener != nil {
		if err := a.changesListener.Close(); err != nil {
			a.logger.Error("Error closing listing changes listener", err, nil)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Error closing publisher", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

// parseLogLevel возвращает уровень и признак того, что строка распознана
func parseLogLevel(levelStr string) (slog.Level, bool) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
