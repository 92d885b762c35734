package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/micromatch/micromatch/internal/config"
	"github.com/micromatch/micromatch/internal/infra/database"
	"github.com/micromatch/micromatch/internal/infra/repository"
	"github.com/micromatch/micromatch/internal/present/rest"
	"github.com/micromatch/micromatch/internal/usecase"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var store usecase.RecordStore
	switch conf.Server.StoreBackend {
	case "postgres":
		db, err := database.NewPostgres(conf.Server.PostgresDsn)
		if err != nil {
			slog.Error("failed to connect database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := database.MigratePostgres(db); err != nil {
			slog.Error("failed to migrate database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = repository.NewPostgresRecordStore(db)
	default:
		rdb, err := database.NewRedis(conf.Server.RedisURL)
		if err != nil {
			slog.Error("failed to connect redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = repository.NewRedisRecordStore(rdb)
	}

	if conf.Server.MemcachedAddr != "" {
		store = repository.NewMemcachedRecordStore(store, database.NewMemcached(conf.Server.MemcachedAddr))
	}

	handler := rest.NewHandler(usecase.NewStoreUsecase(store))

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown(context.Background())
		e.Use(otelecho.Middleware("micromatch"))
	}

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTracer(endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("micromatch"),
		)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
