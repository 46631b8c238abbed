package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"calendo/services/scheduling"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeGenerateSlots = "slots:generate"

// GenerateSlotsPayload names a month explicitly, or leaves Year and Month zero
// and asks for the month MonthsAhead after the one the task runs in.
type GenerateSlotsPayload struct {
	Year        int `json:"year,omitempty"`
	Month       int `json:"month,omitempty"`
	MonthsAhead int `json:"monthsAhead,omitempty"`
}

func NewGenerateSlotsTask(payload GenerateSlotsPayload, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts = append([]asynq.Option{asynq.MaxRetry(3), asynq.Timeout(2 * time.Minute)}, opts...)
	return asynq.NewTask(TypeGenerateSlots, b, opts...), nil
}

// TargetMonth resolves the month the payload refers to, relative to now.
func (p GenerateSlotsPayload) TargetMonth(now time.Time) (int, int) {
	if p.Year != 0 && p.Month != 0 {
		return p.Year, p.Month
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	target := first.AddDate(0, p.MonthsAhead, 0)
	return target.Year(), int(target.Month())
}

// HandleGenerateSlotsTask generates the payload's month. Invalid payloads are
// not retried.
func HandleGenerateSlotsTask(engine *scheduling.Engine, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p GenerateSlotsPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid slot generation payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}

		year, month := p.TargetMonth(time.Now().In(engine.Location))
		res, err := engine.GenerateMonth(ctx, year, month)
		if err != nil {
			if scheduling.IsCode(err, scheduling.CodeInvalidInput) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			logger.Error("Slot generation failed", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
			return err
		}

		logger.Info("Slot generation finished",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Bool("created", res.Created),
			zap.Int("slots", len(res.Slots)),
		)
		return nil
	}
}
