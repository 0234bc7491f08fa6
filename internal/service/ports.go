package service

import (
	"context"
	"errors"
	"time"

	"busline/internal/models"
)

const (
	EventInterestUpdated = "interest_updated"
	EventInterestReset   = "interest_reset"
)

// InterestEvent: изменение счётчика интереса слота.
type InterestEvent struct {
	Type          string           `json:"event_type"`
	LineID        uint             `json:"line_id"`
	ScheduleID    uint             `json:"schedule_id"`
	DayOfWeek     models.Weekday   `json:"day_of_week"`
	DepartureTime models.TimeOfDay `json:"departure_time"`
	InterestCount int              `json:"interest_count"`
	At            time.Time        `json:"at"`
}

// Notifier доставляет события интереса подписчикам (WebSocket, NATS).
type Notifier interface {
	NotifyInterest(ctx context.Context, evt InterestEvent) error
}

// Notifiers рассылает событие всем получателям и собирает их ошибки.
type Notifiers []Notifier

func (n Notifiers) NotifyInterest(ctx context.Context, evt InterestEvent) error {
	var errs []error
	for _, notifier := range n {
		if notifier == nil {
			continue
		}
		if err := notifier.NotifyInterest(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Deduper хранит ключи идемпотентности регистрации интереса.
type Deduper interface {
	// Claim занимает ключ на ttl. false, если ключ уже занят.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Metrics: счётчики сервиса расписания.
type Metrics interface {
	InterestRegistered()
	InterestRejected(reason string)
	CountersReset(n int)
	ObserveResolve(d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) InterestRegistered()          {}
func (nopMetrics) InterestRejected(string)      {}
func (nopMetrics) CountersReset(int)            {}
func (nopMetrics) ObserveResolve(time.Duration) {}
