package app

import (
	"context"
	"errors"
	"net/http"

	"go-lcms/internal/auth"
	"go-lcms/internal/config"
	"go-lcms/internal/credit"
	"go-lcms/internal/employee"
	"go-lcms/internal/leave"
	"go-lcms/internal/messaging/kafka"
	"go-lcms/internal/middleware"
	"go-lcms/internal/shared/connection"
	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the stores, migrates the schema, seeds the bootstrap HR
// account and registers every module on router. The returned cleanup closes
// the connections it opened.
func BuildApp(ctx context.Context, router *gin.Engine, cfg config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", zap.String("driver", cfg.DBDriver))

	if err := migrate(gormDB, cfg); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBMaxRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set; caching and idempotency disabled")
	}

	router.Use(middleware.RequestID())
	router.GET("/health", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	mods, err := registerModules(router, cfg, sqlDB, gormDB, rdb, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := seedBootstrapHR(ctx, cfg, mods.employees, mods.auth, logger); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return func(context.Context) error {
		var errs []error
		if rdb != nil {
			errs = append(errs, rdb.Close())
		}
		errs = append(errs, sqlDB.Close())
		return errors.Join(errs...)
	}, nil
}

func migrate(db *gorm.DB, cfg config.Config) error {
	models := []any{
		&employee.Employee{},
		&auth.User{},
		&credit.LeaveCredit{},
		&leave.LeaveRequest{},
		&leave.LeaveDocument{},
	}
	// The outbox relay speaks postgres SQL; sqlite deployments run without it.
	if cfg.DBDriver == config.DriverPostgres {
		models = append(models, &kafka.OutboxRecord{})
	}
	return db.AutoMigrate(models...)
}
