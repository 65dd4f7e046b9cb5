package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RohithAchar/oxm-sub002/internal/addresses"
	"github.com/RohithAchar/oxm-sub002/internal/admin"
	"github.com/RohithAchar/oxm-sub002/internal/app"
	"github.com/RohithAchar/oxm-sub002/internal/auth"
	"github.com/RohithAchar/oxm-sub002/internal/banking"
	"github.com/RohithAchar/oxm-sub002/internal/catalog"
	"github.com/RohithAchar/oxm-sub002/internal/leads"
	"github.com/RohithAchar/oxm-sub002/internal/notifications"
	"github.com/RohithAchar/oxm-sub002/internal/observability"
	"github.com/RohithAchar/oxm-sub002/internal/platform/cache"
	"github.com/RohithAchar/oxm-sub002/internal/platform/db"
	"github.com/RohithAchar/oxm-sub002/internal/platform/migrate"
	"github.com/RohithAchar/oxm-sub002/internal/rbac"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
	"github.com/RohithAchar/oxm-sub002/internal/suppliers"
	"github.com/RohithAchar/oxm-sub002/internal/support"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	migrateDown := flag.Bool("migrate-down", false, "roll back the latest migration and exit")
	flag.Parse()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if *migrateDown {
		if err := migrate.Down(cfg.PGDSN, logger); err != nil {
			logger.Error("migrate down", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if *migrateOnly || cfg.MigrateOnStart {
		if err := migrate.Up(cfg.PGDSN, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
		if *migrateOnly {
			return
		}
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "openxmart_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	metrics := observability.NewMetrics()
	if err := metrics.RegisterPool("postgres", func() (int32, int32, int32) {
		stat := dbpool.Stat()
		return stat.AcquiredConns(), stat.IdleConns(), stat.TotalConns()
	}); err != nil {
		logger.Warn("register pool metrics", slog.Any("error", err))
	}

	authService := auth.NewService(auth.NewRepository(dbpool))
	gate := auth.NewGate(authService, logger)
	authHandler := auth.NewHandler(logger, authService, gate, sessionManager, csrfManager)

	notificationService := notifications.NewService(notifications.NewRepository(dbpool))

	ifscCache := cache.NewJSONCache(redisClient, "ifsc:", cfg.IFSCCacheTTL)
	bankingService := banking.NewService(banking.NewClient(cfg.IFSCBaseURL), ifscCache, logger, metrics)

	supplierService := suppliers.NewService(suppliers.NewRepository(dbpool), bankingService, auditLogger, notificationService, logger)
	catalogService := catalog.NewService(catalog.NewRepository(dbpool), supplierService, auditLogger)
	leadService := leads.NewService(leads.NewRepository(dbpool), catalogService, supplierService, idempotencyStore, notificationService, logger)
	supportService := support.NewService(support.NewRepository(dbpool), notificationService, logger)
	addressService := addresses.NewService(addresses.NewRepository(dbpool))
	adminService := admin.NewService(admin.NewCounter(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Gate:           gate,
		RBACMiddleware: rbac.Middleware{Logger: logger},
		Metrics:        metrics,
		Health: map[string]app.HealthChecker{
			"postgres": dbpool,
			"redis":    redisPinger{client: redisClient},
		},
		AuthHandler:          authHandler,
		SupplierHandler:      suppliers.NewHandler(logger, supplierService),
		BankingHandler:       banking.NewHandler(logger, bankingService),
		CatalogHandler:       catalog.NewHandler(logger, catalogService),
		LeadsHandler:         leads.NewHandler(logger, leadService),
		NotificationsHandler: notifications.NewHandler(logger, notificationService),
		SupportHandler:       support.NewHandler(logger, supportService),
		AddressesHandler:     addresses.NewHandler(logger, addressService),
		AdminHandler:         admin.NewHandler(logger, adminService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
