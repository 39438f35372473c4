package app

import (
	"os"
	"strconv"

	"go-payroll/internal/payperiod"
	"go-payroll/internal/paysync"
	"go-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultMissedDayDeductionCents = 5000

// engineConfig collects the payroll knobs read from the environment.
type engineConfig struct {
	period payperiod.Config
	sync   paysync.Config
}

func loadEngineConfig() engineConfig {
	cfg := engineConfig{
		sync: paysync.Config{MissedDayDeductionCents: defaultMissedDayDeductionCents},
	}
	if v := os.Getenv("MISSED_DAY_DEDUCTION_CENTS"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil && cents > 0 {
			cfg.sync.MissedDayDeductionCents = cents
		}
	}
	if v := os.Getenv("REQUIRE_EMPLOYEE_APPROVAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.period.RequireEmployeeApproval = b
		}
	}
	return cfg
}

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	return registerModules(router, sqlDB, gormDB, redisClient, loadEngineConfig())
}
