package app

import (
	"database/sql"
	"path/filepath"

	"go-payroll/internal/attendance"
	"go-payroll/internal/audit"
	"go-payroll/internal/employee"
	"go-payroll/internal/entry"
	"go-payroll/internal/job"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payperiod"
	"go-payroll/internal/paysync"
	"go-payroll/internal/rate"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/schedule"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg engineConfig,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	jobRepo := job.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	rateRepo := rate.NewRepository(gormDB)
	entryRepo := entry.NewRepository(gormDB)
	periodRepo := payperiod.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	auditService := audit.NewService(auditRepo)
	attendanceService := attendance.NewService(db, attendanceRepo)
	rateService := rate.NewService(db, rateRepo)
	entryService := entry.NewService(db, entryRepo, auditService, outboxRepo)
	syncService := paysync.NewService(
		db, periodRepo, entryRepo, rateRepo, jobRepo,
		attendanceRepo, scheduleRepo, employeeRepo,
		cfg.sync,
	)
	periodService := payperiod.NewService(
		db, periodRepo, entryRepo, employeeRepo,
		syncService, auditService, auditRepo, outboxRepo, rdb,
		cfg.period,
	)

	// --- Handlers ---
	rbacHandler := rbac.NewHandler(rbacService)
	auditHandler := audit.NewHandler(auditService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	rateHandler := rate.NewHandler(rateService)
	entryHandler := entry.NewHandler(entryService)
	syncHandler := paysync.NewHandler(syncService)
	periodHandler := payperiod.NewHandler(periodService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		audit.RegisterRoutes(api, auditHandler, rbacService)
		rate.RegisterRoutes(api, rateHandler, rbacService)
		entry.RegisterRoutes(api, entryHandler, rbacService)
		paysync.RegisterRoutes(api, syncHandler, rbacService)
		payperiod.RegisterRoutes(api, periodHandler, rbacService, rdb)
	}

	rbac.RegisterRoutes(router, rbacHandler)

	return nil
}
