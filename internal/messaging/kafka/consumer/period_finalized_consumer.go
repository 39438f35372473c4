package consumer

import (
	"context"
	"encoding/json"

	"go-payroll/internal/events"
	"go-payroll/internal/payperiod"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumePeriodFinalized marks the finalized period's payroll expense as
// exported to accounting. Marking is a no-op when a redelivered message
// finds the expense already exported, so at-least-once delivery is safe.
func ConsumePeriodFinalized(
	ctx context.Context,
	reader *kafkago.Reader,
	periodService payperiod.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.period_finalized")
	log.Info("period finalized consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("period finalized consumer stopped")
				return
			}
			log.Error("fetch period finalized message failed", zap.Error(err))
			continue
		}

		var event events.PeriodFinalizedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode period finalized event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := periodService.MarkExpenseExported(ctx, event.PeriodID); err != nil {
			log.Error("mark payroll expense exported failed",
				zap.String("period_id", event.PeriodID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit period finalized message failed", zap.Error(err))
			continue
		}

		log.Info("payroll expense exported",
			zap.String("period_id", event.PeriodID),
			zap.String("company_id", event.CompanyID),
			zap.Int64("net_amount", event.NetAmount),
		)
	}
}
