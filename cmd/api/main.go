package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"

	"exercises/internal/config"
	"exercises/internal/database"
	"exercises/internal/database/migration"
	handlers "exercises/internal/http/handler"
	"exercises/internal/http/middleware"
	"exercises/internal/logger"
	telemetry "exercises/internal/otel"
	"exercises/internal/repository"
	"exercises/internal/repository/instrumented"
	mongorepo "exercises/internal/repository/mongo"
	"exercises/internal/repository/postgres"
	"exercises/internal/service"
	"exercises/internal/storage"
)

// exerciseStore bundles the selected repository with its lifecycle hooks.
type exerciseStore struct {
	repo  repository.ExerciseRepository
	ping  handlers.PingFunc
	close func(context.Context) error
}

// initTracing is swapped in tests.
var initTracing = telemetry.Init

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.Stdout(cfg.Location())

	if err := run(cfg, log); err != nil {
		logExit(log, err)
		os.Exit(1)
	}
}

// logExit records the error that stopped the service.
func logExit(log zerolog.Logger, err error) {
	appLog := logger.Component(log, "app")
	appLog.Error().Err(err).Msg("exiting")
}

// run wires the service and blocks until the HTTP server stops. Every
// resource opened here is released before it returns.
func run(cfg *config.AppConfig, log zerolog.Logger) error {
	appLog := logger.Component(log, "app")

	shutdownTracing, err := initTracing(context.Background(), logger.Component(log, "otel"))
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("connect to %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.close(ctx); err != nil {
			appLog.Error().Err(err).Msg("failed to close database")
		}
	}()

	repoMetrics, err := instrumented.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register repository metrics: %w", err)
	}
	exerciseRepo := instrumented.New(store.repo, repoMetrics, otel.Tracer(telemetry.TracerName), cfg.StoreDriver)

	// Object storage is only needed for snapshot exports
	var objStore storage.Storage
	if cfg.Export.Enabled {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return fmt.Errorf("initialize object storage: %w", err)
		}
	}
	exportSvc := service.NewExportService(objStore, exerciseRepo, time.Duration(cfg.Export.PresignExpirySec)*time.Second)

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.LoggerWithWriter(os.Stdout, cfg.Location()))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, store.ping, prometheus.DefaultGatherer, exportSvc)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		<-sig
		appLog.Info().Str("event", "shutdown").Send()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(ctx)
	}()

	addr := ":" + cfg.Port
	appLog.Info().Str("event", "server_start").Str("addr", addr).Bool("export_enabled", cfg.Export.Enabled).Send()

	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// openStore connects to the backend named by cfg.StoreDriver and makes sure
// the exercises collection or table exists.
func openStore(cfg *config.AppConfig, log zerolog.Logger) (*exerciseStore, error) {
	dbLog := logger.Component(log, "database")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := database.NewMongo(cfg.Mongo)
		if err != nil {
			return nil, err
		}
		dbLog.Info().Str("event", "db_connected").Str("driver", cfg.StoreDriver).Str("database", cfg.Mongo.Database).Send()

		db := client.Database(cfg.Mongo.Database)
		if err := database.EnsureMongoSchema(ctx, db, cfg.Mongo.Collection, dbLog); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}

		return &exerciseStore{
			repo:  mongorepo.NewExerciseMongo(db.Collection(cfg.Mongo.Collection)),
			ping:  func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close: client.Disconnect,
		}, nil

	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		dbLog.Info().Str("event", "db_connected").Str("driver", cfg.StoreDriver).Str("db_host", cfg.Database.Host).Send()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, err
		}

		return &exerciseStore{
			repo:  postgres.NewExercisePostgres(db),
			ping:  db.PingContext,
			close: func(context.Context) error { return db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
