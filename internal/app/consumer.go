package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payroll/internal/attendance"
	"go-payroll/internal/audit"
	"go-payroll/internal/employee"
	"go-payroll/internal/entry"
	"go-payroll/internal/events"
	"go-payroll/internal/job"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/payperiod"
	"go-payroll/internal/paysync"
	"go-payroll/internal/rate"
	"go-payroll/internal/schedule"
	"go-payroll/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reacts to finalized periods by marking their payroll
// expense as exported.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

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

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	cfg := loadEngineConfig()

	auditRepo := audit.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	jobRepo := job.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	rateRepo := rate.NewRepository(gormDB)
	entryRepo := entry.NewRepository(gormDB)
	periodRepo := payperiod.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	auditService := audit.NewService(auditRepo)
	syncService := paysync.NewService(
		sqlDB, periodRepo, entryRepo, rateRepo, jobRepo,
		attendanceRepo, scheduleRepo, employeeRepo,
		cfg.sync,
	)
	periodService := payperiod.NewService(
		sqlDB, periodRepo, entryRepo, employeeRepo,
		syncService, auditService, auditRepo, outboxRepo, nil,
		cfg.period,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.PeriodFinalizedTopic,
		GroupID:        "go-payroll-expense-export",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumePeriodFinalized(ctx, reader, periodService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
