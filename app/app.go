package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tender-alert-engine/internal/config"
	"tender-alert-engine/internal/controller"
	"tender-alert-engine/internal/delivery"
	"tender-alert-engine/internal/entitlement"
	"tender-alert-engine/internal/ingest"
	"tender-alert-engine/internal/logger"
	"tender-alert-engine/internal/repo"
	"tender-alert-engine/internal/repo/rediscache"
	"tender-alert-engine/internal/scheduler"
	"tender-alert-engine/internal/scoring"
	"tender-alert-engine/internal/service"
	"tender-alert-engine/pkg/http_server"
	"tender-alert-engine/pkg/postgres"
	"tender-alert-engine/pkg/redisdb"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const deliveryBackoffBase = 500 * time.Millisecond

func runMigrations(postgresDB *postgres.Postgres, databaseName string, zlog *zap.Logger) {
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{DatabaseName: databaseName})
	if err != nil {
		zlog.Fatal("creating migration driver", zap.Error(err))
	}

	migrations, err := migrate.NewWithDatabaseInstance("file://migrations", databaseName, driver)
	if err != nil {
		zlog.Fatal("loading migrations", zap.Error(err))
	}

	if err := migrations.Up(); err != nil {
		if err.Error() == "no change" {
			zlog.Info("no change made by migration scripts")
		} else {
			zlog.Fatal("running migrations", zap.Error(err))
		}
	}
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	zlog.Info("connecting database")
	postgresDB, err := postgres.NewDB(cfg.PostgresConn)
	if err != nil {
		zlog.Fatal("connecting to postgres", zap.Error(err))
	}
	defer postgresDB.Close()

	zlog.Info("running migrations")
	runMigrations(postgresDB, os.Getenv("POSTGRES_DATABASE"), zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zlog.Info("connecting redis")
	redisClient, err := redisdb.New(ctx, cfg.RedisURL)
	if err != nil {
		zlog.Fatal("connecting to redis", zap.Error(err))
	}
	defer redisClient.Close()

	repositories := repo.NewRepositories(postgresDB)
	engine := scoring.NewEngine()
	services := service.NewServices(repositories, engine)

	scoreCache := rediscache.NewScoreCache(redisClient)
	entitlements := entitlement.NewClient(cfg.BillingURL, redisClient)
	webhook := delivery.NewWebhook(cfg.DeliveryWebhookURL)
	ruleSource := service.NewAlertRuleService(repositories)

	dispatcher := scheduler.NewDispatcher(ruleSource, entitlements, repositories.NotificationEvent,
		webhook, zlog, cfg.DeliveryAttempts, deliveryBackoffBase)

	feed := ingest.NewFeed(cfg.FeedURL)
	poller := ingest.NewPoller(feed, repositories.Profile, scoreCache, engine, dispatcher, zlog)

	ticker := scheduler.NewTicker(dispatcher, poller, cfg.FeedPollMinutes, zlog)
	if err := ticker.Start(ctx); err != nil {
		zlog.Fatal("starting scheduler", zap.Error(err))
	}
	defer ticker.Stop()

	handler := echo.New()

	zlog.Info("setup routes")
	controller.SetupRoutesHandlers(handler, services)

	zlog.Info("starting server", zap.String("address", cfg.ServerAddress))
	httpServer := http_server.New(handler, cfg.ServerAddress)

	zlog.Info("ready to process requests")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		zlog.Info("got signal", zap.String("signal", s.String()))
	case err = <-httpServer.Notify():
		zlog.Error("server notify", zap.Error(err))
	}

	zlog.Info("shutting down")
	cancel()
	if err := httpServer.Shutdown(); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	} else {
		zlog.Info("successful shutdown")
	}
}
