package cron

import (
	"time"

	"calendo/config"
	"calendo/services/scheduling"
	"calendo/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitSlotWorker starts the asynq server handling slot generation in the
// background, retrying while Redis is unreachable. The caller shuts it down.
func InitSlotWorker(engine *scheduling.Engine, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeGenerateSlots, tasks.HandleGenerateSlotsTask(engine, logger))

	go func() {
		logger.Info("Starting slot worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Warn("Slot worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Slot worker gave up; monthly generation must be triggered over HTTP")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// InitSlotScheduler enqueues slot generation on SLOT_GENERATION_CRON for the
// month SLOT_GENERATION_MONTHS_AHEAD after the current one.
func InitSlotScheduler(logger *zap.Logger) (*asynq.Scheduler, error) {
	loc := config.Location()
	scheduler := asynq.NewScheduler(redisOpts(), &asynq.SchedulerOpts{
		Location: loc,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Error("Failed to enqueue slot generation", zap.Error(err))
			}
		},
	})

	task, err := tasks.NewGenerateSlotsTask(tasks.GenerateSlotsPayload{
		MonthsAhead: config.AppConfig.SlotGenerationMonthsAhead,
	})
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register(config.AppConfig.SlotGenerationCron, task)
	if err != nil {
		return nil, err
	}
	logger.Info("Slot generation scheduled",
		zap.String("entryID", entryID),
		zap.String("cron", config.AppConfig.SlotGenerationCron),
	)

	if err := scheduler.Start(); err != nil {
		return nil, err
	}
	return scheduler, nil
}
