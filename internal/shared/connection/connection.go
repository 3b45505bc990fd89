package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-lcms/internal/config"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var retryDelay = 5 * time.Second

// ConnectGORMWithRetry opens the configured database and pings it, retrying up to
// cfg.DBMaxRetries times.
func ConnectGORMWithRetry(cfg config.Config) (*gorm.DB, error) {
	log := zap.L().Named("connection")
	maxRetries := cfg.DBMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		db, err := OpenGORM(cfg)
		if err != nil {
			lastErr = err
			log.Warn("database open failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			log.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			log.Warn("database ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if cfg.DBDriver == config.DriverSQLite {
			// sqlite serialises writers; one connection avoids SQLITE_BUSY under load.
			sqlDB.SetMaxOpenConns(1)
		} else {
			sqlDB.SetMaxOpenConns(25)
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetConnMaxLifetime(time.Hour)
		}

		log.Info("database connected", zap.String("driver", cfg.DBDriver))
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
}

func OpenGORM(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	default:
		return gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
	}
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	for i := 1; i <= maxRetries; i++ {
		if err := rdb.Ping(context.Background()).Err(); err == nil {
			zap.L().Named("connection").Info("redis connected", zap.String("addr", addr))
			return rdb, nil
		}

		zap.L().Named("connection").Warn("redis ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries))
		time.Sleep(retryDelay)
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect redis at %s", addr)
}

// ConnectKafkaWithRetry dials the broker to make sure it is reachable and returns a
// writer without a fixed topic; each message carries its own topic.
func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafkago.Writer, error) {
	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := kafkago.Dial("tcp", broker)
		if err == nil {
			_ = conn.Close()
			zap.L().Named("connection").Info("kafka connected", zap.String("broker", broker))
			return &kafkago.Writer{
				Addr:                   kafkago.TCP(broker),
				Balancer:               &kafkago.Hash{},
				RequiredAcks:           kafkago.RequireAll,
				AllowAutoTopicCreation: true,
			}, nil
		}
		lastErr = err
		zap.L().Named("connection").Warn("kafka dial failed", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("kafka connection failed after %d retries: %w", maxRetries, lastErr)
}

// BindTx returns a gorm handle whose statements run on tx, so gorm repositories
// can join a transaction the service opened on the underlying *sql.DB.
func BindTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	gdb := db.Session(&gorm.Session{NewDB: true})
	gdb.Statement.ConnPool = tx
	return gdb
}
