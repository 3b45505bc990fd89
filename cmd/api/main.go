package main

import (
	"context"
	"time"

	"go-lcms/internal/app"
	"go-lcms/internal/bootstrap"
	"go-lcms/internal/config"
	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	apperror.Init()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName: "lcms-api",
		Exporter:    cfg.OtelExporter,
		Endpoint:    cfg.OtelEndpoint,
	})
	if err != nil {
		logger.Fatal("init tracer failed", zap.Error(err))
	}

	r := gin.Default()

	// build dependency + routes
	cleanup, err := app.BuildApp(ctx, r, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger(logger)
	bootstrap.StartHTTPServer(
		otelhttp.NewHandler(r, "lcms-api"),
		bootstrap.ServerConfig{
			Port:            cfg.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		auditLogger,
		cleanup,
		shutdownTracer,
	)
}
