package main

import (
	"context"

	"go-lcms/internal/app"
	"go-lcms/internal/config"
	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/telemetry"

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

	shutdownTracer, err := telemetry.InitTracer(context.Background(), telemetry.Config{
		ServiceName: "lcms-worker",
		Exporter:    cfg.OtelExporter,
		Endpoint:    cfg.OtelEndpoint,
	})
	if err != nil {
		logger.Fatal("init tracer failed", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	if err := app.RunWorker(cfg, logger); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
