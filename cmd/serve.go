package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-order-sync/app/controller"
	"github.com/vibast-solutions/ms-go-order-sync/app/gateway"
	"github.com/vibast-solutions/ms-go-order-sync/app/lock"
	"github.com/vibast-solutions/ms-go-order-sync/app/repository"
	"github.com/vibast-solutions/ms-go-order-sync/app/service"
	"github.com/vibast-solutions/ms-go-order-sync/app/settings"
	"github.com/vibast-solutions/ms-go-order-sync/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the Echo HTTP server exposing the webhook, refund, and transaction endpoints.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, syncService, cleanup := mustCreateSyncService()
	defer cleanup()

	webhookController := controller.NewWebhookController(syncService)
	refundController := controller.NewRefundController(syncService)

	e := setupHTTPServer(webhookController, refundController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	webhookController *controller.WebhookController,
	refundController *controller.RefundController,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", refundController.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/webhooks/:spaceId", webhookController.HandleWebhook)

	refunds := e.Group("/refunds")
	refunds.POST("", refundController.CreateRefund)
	refunds.POST("/by-amount", refundController.CreateRefundByAmount)

	transactions := e.Group("/transactions")
	transactions.GET("/:id", refundController.GetTransaction)
	transactions.GET("/:id/refunds", refundController.ListRefunds)

	return e
}

func mustCreateSyncService() (*config.Config, *service.SyncService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	locker, closeLocker := createEntityLocker(cfg)

	gatewayClient := gateway.NewClient(gateway.ClientConfig{
		BaseURL:     cfg.Gateway.BaseURL,
		HTTPTimeout: cfg.Gateway.HTTPTimeout,
	})

	syncService := service.NewSyncService(
		repository.NewTransactionRepository(db),
		repository.NewOrderRepository(db),
		repository.NewOrderDeliveryRepository(db),
		repository.NewOrderLineItemRepository(db),
		repository.NewRefundRepository(db),
		repository.NewIdempotencyRepository(db),
		repository.NewWebhookEventRepository(db),
		repository.NewPaymentMethodConfigurationRepository(db),
		gatewayClient,
		settings.NewEnvService(cfg.Gateway, cfg.Sync),
		locker,
		cfg.Sync,
	)

	cleanup := func() {
		closeLocker()
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, syncService, cleanup
}

// createEntityLocker picks the lock backend: Redis when an address is
// configured so locks hold across replicas, otherwise the in-process arena.
func createEntityLocker(cfg *config.Config) (lock.EntityLocker, func()) {
	if cfg.Redis.Addr == "" {
		return lock.NewKeyedMutex(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping redis")
	}

	locker := lock.NewRedisLocker(client, cfg.Redis.LockTTL, logrus.WithField("module", "entity-lock"))
	closeFn := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis client")
		}
	}

	return locker, closeFn
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
