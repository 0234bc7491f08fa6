package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultResetSpec: сброс счётчиков интереса каждую минуту (формат с секундами).
const DefaultResetSpec = "0 * * * * *"

const sweepTimeout = 30 * time.Second

// Sweeper обнуляет счётчики прошедших отправлений.
type Sweeper interface {
	ResetElapsed(ctx context.Context) (int, error)
}

// ResetElapsedJob возвращает cron-задачу сброса счётчиков.
func ResetElapsedJob(sweeper Sweeper, log *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		n, err := sweeper.ResetElapsed(ctx)
		if err != nil {
			log.Error("Ошибка cron-задачи сброса счётчиков интереса", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("Cron: счётчики интереса сброшены", zap.Int("count", n))
		}
	}
}

// InitScheduler регистрирует задачи и запускает cron-планировщик.
func InitScheduler(spec string, sweeper Sweeper, log *zap.Logger) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultResetSpec
	}
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(spec, ResetElapsedJob(sweeper, log)); err != nil {
		return nil, fmt.Errorf("ошибка запуска cron-задачи ResetElapsed (%q): %w", spec, err)
	}

	c.Start()
	log.Info("Cron-планировщик запущен.", zap.String("reset_spec", spec))
	return c, nil
}
