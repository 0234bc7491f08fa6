package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"busline/internal/repository"
	"busline/internal/response"
	"busline/internal/schedule"
)

// ScheduleService: операции над расписанием и интересом пассажиров.
type ScheduleService interface {
	ListLines(ctx context.Context, activeOnly bool) ([]response.LineResponse, error)
	ListLineSchedules(ctx context.Context, lineID uint) ([]response.SlotResponse, error)
	ListSchedules(ctx context.Context, activeLinesOnly bool) ([]response.SlotResponse, error)

	Timer(ctx context.Context, lineID uint) (*response.TimerResponse, error)
	Current(ctx context.Context, lineID *uint) (*response.SlotResponse, error)
	Next(ctx context.Context, lineID *uint, todayOnly bool) (*response.SlotResponse, error)
	ByLineAndTime(ctx context.Context, lineID uint, departure string, day *int) (*response.SlotResponse, error)
	GetSlot(ctx context.Context, id uint) (*response.SlotResponse, error)

	CanRegister(ctx context.Context, lineID uint, departure string) (*response.CanRegisterResponse, error)
	RegisterInterest(ctx context.Context, lineID uint, departure string, idempotencyKey string) (*response.SlotResponse, error)
	ResetElapsed(ctx context.Context) (int, error)

	CreateSlot(ctx context.Context, in SlotInput) (*response.SlotResponse, error)
	UpdateSlot(ctx context.Context, id uint, patch SlotPatch) (*response.SlotResponse, error)
	DeleteSlot(ctx context.Context, id uint) error
}

// Options: зависимости и параметры сервиса. Незаданные поля получают значения по умолчанию.
type Options struct {
	GraceWindow    time.Duration
	Location       *time.Location
	Now            func() time.Time
	IdempotencyTTL time.Duration
	Deduper        Deduper
	Notifier       Notifier
	Metrics        Metrics
}

const defaultIdempotencyTTL = 24 * time.Hour

type scheduleService struct {
	repo           *repository.Repository
	resolver       schedule.Resolver
	loc            *time.Location
	now            func() time.Time
	idempotencyTTL time.Duration
	dedupe         Deduper
	notifier       Notifier
	metrics        Metrics
	logger         *zap.Logger
}

// NewScheduleService создаёт ScheduleService.
func NewScheduleService(repo *repository.Repository, opts Options, logger *zap.Logger) ScheduleService {
	s := &scheduleService{
		repo:           repo,
		resolver:       schedule.NewResolver(opts.GraceWindow),
		loc:            opts.Location,
		now:            opts.Now,
		idempotencyTTL: opts.IdempotencyTTL,
		dedupe:         opts.Deduper,
		notifier:       opts.Notifier,
		metrics:        opts.Metrics,
		logger:         logger,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.idempotencyTTL <= 0 {
		s.idempotencyTTL = defaultIdempotencyTTL
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// clock возвращает "сейчас" в единственном часовом поясе сервиса.
func (s *scheduleService) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *scheduleService) notify(ctx context.Context, evt InterestEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyInterest(ctx, evt); err != nil {
		s.logger.Warn("Ошибка доставки события интереса",
			zap.String("event", evt.Type),
			zap.Uint("schedule_id", evt.ScheduleID),
			zap.Error(err),
		)
	}
}
