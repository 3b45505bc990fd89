package app

import (
	"database/sql"
	"net/url"
	"strings"

	"go-lcms/internal/auth"
	"go-lcms/internal/config"
	"go-lcms/internal/credit"
	"go-lcms/internal/document"
	"go-lcms/internal/employee"
	"go-lcms/internal/leave"
	"go-lcms/internal/messaging/kafka"
	"go-lcms/internal/rbac"
	"go-lcms/internal/rbac/infra"
	"go-lcms/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type modules struct {
	employees employee.Service
	auth      auth.Service
}

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (modules, error) {
	secret := []byte(cfg.JWTSecret)
	loc, err := cfg.Location()
	if err != nil {
		return modules{}, err
	}

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	creditRepo := credit.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)

	// Events are only queued when a relay can deliver them.
	var outboxRepo kafka.OutboxRepository
	if cfg.DBDriver == config.DriverPostgres && cfg.KafkaBroker != "" {
		outboxRepo = kafka.NewOutboxRepository(db)
	}

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return modules{}, err
	}
	rbacService, err := rbac.NewService(enforcer, rbac.DefaultPolicies, rbac.DefaultInheritance, logger)
	if err != nil {
		return modules{}, err
	}

	// --- Services ---
	store := document.NewLocalStorage(cfg.StorageDir, cfg.StorageBaseURL, logger)
	employeeService := employee.NewService(db, employeeRepo, creditRepo, outboxRepo, rdb, logger)
	creditService := credit.NewService(db, creditRepo, logger)
	authService := auth.NewService(authRepo, employeeService, secret, logger)
	leaveService := leave.NewService(
		db,
		leaveRepo,
		creditRepo,
		employeeService,
		document.NewUploader(store, logger),
		outboxRepo,
		loc,
		logger,
	)
	reportService := report.NewService(leaveRepo, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	creditHandler := credit.NewHandler(creditService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, cfg.SessionTimeout, logger)
	reportHandler := report.NewHandler(reportService, logger)

	// --- Routes Registration ---
	leave.RegisterDocumentRoutes(router, documentsPath(cfg.StorageBaseURL), leaveHandler, rbacService, secret, logger)
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, rbacService, secret)
		credit.RegisterRoutes(api, creditHandler, rbacService, secret, logger)
		employee.RegisterRoutes(api, employeeHandler, rbacService, secret, logger)
		leave.RegisterRoutes(api, leaveHandler, rbacService, secret, rdb, logger)
		report.RegisterRoutes(api, reportHandler, rbacService, secret, logger)
	}

	return modules{employees: employeeService, auth: authService}, nil
}

// documentsPath is the route prefix matching the URLs LocalStorage hands out;
// STORAGE_BASE_URL may be a full URL or a bare path.
func documentsPath(baseURL string) string {
	p := baseURL
	if u, err := url.Parse(baseURL); err == nil {
		p = u.Path
	}
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return "/files"
	}
	return p
}
