package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is read from the environment (and an optional .env file). Keys are the
// upper-case env names.
type Config struct {
	AppEnv         string        `mapstructure:"APP_ENV"`
	Port           string        `mapstructure:"PORT"`
	DBDriver       string        `mapstructure:"DB_DRIVER"`
	DBHost         string        `mapstructure:"DB_HOST"`
	DBPort         string        `mapstructure:"DB_PORT"`
	DBUser         string        `mapstructure:"DB_USER"`
	DBPassword     string        `mapstructure:"DB_PASSWORD"`
	DBName         string        `mapstructure:"DB_NAME"`
	DBSSLMode      string        `mapstructure:"DB_SSLMODE"`
	SQLitePath     string        `mapstructure:"SQLITE_PATH"`
	DBMaxRetries   int           `mapstructure:"DB_MAX_RETRIES"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	KafkaBroker    string        `mapstructure:"KAFKA_BROKER"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	Timezone       string        `mapstructure:"APP_TIMEZONE"`
	StorageDir     string        `mapstructure:"STORAGE_DIR"`
	StorageBaseURL string        `mapstructure:"STORAGE_BASE_URL"`
	AWSRegion      string        `mapstructure:"AWS_REGION"`
	AWSEndpoint    string        `mapstructure:"AWS_ENDPOINT"`
	SESSender      string        `mapstructure:"SES_SENDER"`
	NotifyHREmail  string        `mapstructure:"NOTIFY_HR_EMAIL"`
	// BootstrapHR* seed the first HR account so the directory can be populated
	// through the API. Left empty, nothing is seeded.
	BootstrapHREmail    string `mapstructure:"BOOTSTRAP_HR_EMAIL"`
	BootstrapHRPassword string `mapstructure:"BOOTSTRAP_HR_PASSWORD"`
	BootstrapHRName     string `mapstructure:"BOOTSTRAP_HR_NAME"`
	OtelExporter   string        `mapstructure:"OTEL_EXPORTER"`
	OtelEndpoint   string        `mapstructure:"OTEL_ENDPOINT"`
	SessionTimeout time.Duration `mapstructure:"SESSION_TIMEOUT"`
	OutboxInterval time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
}

var keys = []string{
	"APP_ENV", "PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"DB_SSLMODE", "SQLITE_PATH", "DB_MAX_RETRIES", "REDIS_ADDR", "KAFKA_BROKER", "JWT_SECRET",
	"APP_TIMEZONE", "STORAGE_DIR", "STORAGE_BASE_URL", "AWS_REGION", "AWS_ENDPOINT", "SES_SENDER",
	"NOTIFY_HR_EMAIL", "OTEL_EXPORTER", "OTEL_ENDPOINT", "SESSION_TIMEOUT", "OUTBOX_POLL_INTERVAL",
	"BOOTSTRAP_HR_EMAIL", "BOOTSTRAP_HR_PASSWORD", "BOOTSTRAP_HR_NAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lcms")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "lcms.db")
	v.SetDefault("DB_MAX_RETRIES", 5)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("STORAGE_DIR", "uploads")
	v.SetDefault("STORAGE_BASE_URL", "/files")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "")
	v.SetDefault("SES_SENDER", "")
	v.SetDefault("NOTIFY_HR_EMAIL", "")
	v.SetDefault("OTEL_EXPORTER", "none")
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")
	v.SetDefault("SESSION_TIMEOUT", "5s")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "3s")
	v.SetDefault("BOOTSTRAP_HR_NAME", "HR Administrator")
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	// AutomaticEnv alone does not make Unmarshal see env-only keys.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.BootstrapHREmail != "" && len(c.BootstrapHRPassword) < 8 {
		return fmt.Errorf("BOOTSTRAP_HR_PASSWORD must be at least 8 characters")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Location is the timezone used to decide what "today" is for leave dates.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
