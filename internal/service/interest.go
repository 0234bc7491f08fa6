package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"busline/internal/models"
	"busline/internal/repository"
	"busline/internal/response"
	"busline/internal/schedule"
)

// CanRegister сообщает, можно ли сейчас зарегистрировать интерес к слоту
// сегодняшнего дня. Неизвестная линия или слот дают false без ошибки.
func (s *scheduleService) CanRegister(ctx context.Context, lineID uint, departure string) (*response.CanRegisterResponse, error) {
	dep, err := parseDeparture(departure)
	if err != nil {
		return nil, err
	}
	ref := s.clock()

	slots, err := s.lineSnapshot(ctx, lineID, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return rejected(schedule.ReasonUnknownSlot), nil
		}
		return nil, err
	}

	target, ok := findToday(slots, dep, ref)
	if !ok {
		return rejected(schedule.ReasonUnknownSlot), nil
	}
	verdict := s.resolver.Check(slots, target, ref)
	return &response.CanRegisterResponse{CanRegister: verdict.Allowed, Reason: string(verdict.Reason)}, nil
}

// RegisterInterest увеличивает счётчик интереса сегодняшнего слота на единицу.
// Повтор с тем же ключом идемпотентности возвращает текущее состояние слота без
// повторного инкремента.
func (s *scheduleService) RegisterInterest(ctx context.Context, lineID uint, departure string, idempotencyKey string) (*response.SlotResponse, error) {
	dep, err := parseDeparture(departure)
	if err != nil {
		return nil, err
	}
	ref := s.clock()

	if err := s.ensureLine(ctx, lineID); err != nil {
		return nil, err
	}
	day, ok := models.WeekdayOf(ref)
	if !ok {
		s.metrics.InterestRejected(string(schedule.ReasonUnknownSlot))
		return nil, ErrSlotNotFound
	}
	if err := s.sweep(ctx, ref); err != nil {
		return nil, err
	}

	key := repository.SlotKey{LineID: lineID, Day: day, Departure: dep}

	dedupeKey := ""
	if idempotencyKey != "" && s.dedupe != nil {
		dedupeKey = fmt.Sprintf("interest:%d:%d:%s:%s:%s", lineID, day, dep, ref.Format(time.DateOnly), idempotencyKey)
		claimed, err := s.dedupe.Claim(ctx, dedupeKey, s.idempotencyTTL)
		if err != nil {
			// Без хранилища ключей регистрация продолжается без защиты от повторов.
			s.logger.Warn("Ошибка проверки ключа идемпотентности", zap.String("key", dedupeKey), zap.Error(err))
			dedupeKey = ""
		} else if !claimed {
			s.logger.Info("Повторная регистрация интереса", zap.String("key", dedupeKey))
			return s.currentSlot(ctx, key)
		}
	}

	slot, err := s.repo.Schedule.IncrementInterest(ctx, key, ref, func(daySlots []models.Schedule, target models.Schedule) error {
		if verdict := s.resolver.Check(daySlots, target, ref); !verdict.Allowed {
			return &IneligibleError{Reason: verdict.Reason}
		}
		return nil
	})
	if err != nil {
		s.release(ctx, dedupeKey)

		var ineligible *IneligibleError
		switch {
		case errors.As(err, &ineligible):
			s.metrics.InterestRejected(string(ineligible.Reason))
			s.logger.Info("Регистрация интереса отклонена",
				zap.Uint("line_id", lineID),
				zap.String("departure", dep.String()),
				zap.String("reason", string(ineligible.Reason)),
			)
			return nil, ineligible
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.metrics.InterestRejected(string(schedule.ReasonUnknownSlot))
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Ошибка регистрации интереса",
			zap.Uint("line_id", lineID),
			zap.String("departure", dep.String()),
			zap.Error(err),
		)
		return nil, persistence("increment_interest", err)
	}

	s.metrics.InterestRegistered()
	s.logger.Info("Интерес зарегистрирован",
		zap.Uint("schedule_id", slot.ID),
		zap.Int("interest_count", slot.InterestCount),
	)
	s.notify(ctx, newInterestEvent(EventInterestUpdated, slot, ref))

	resp := toSlotResponse(slot)
	departsAt := schedule.OccurrenceInWeek(slot.DayOfWeek, slot.DepartureTime, ref)
	resp.DepartsAt = &departsAt
	return &resp, nil
}

// ResetElapsed обнуляет счётчики всех прошедших отправлений и возвращает число
// изменённых слотов. Повторный вызов без смены времени ничего не меняет.
func (s *scheduleService) ResetElapsed(ctx context.Context) (int, error) {
	ref := s.clock()
	n, err := s.reset(ctx, ref)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Счётчики интереса сброшены", zap.Int("count", n))
	}
	return n, nil
}

// sweep выполняется перед каждым чтением и регистрацией: ни одна операция не
// видит ненулевой счётчик уже прошедшего отправления.
func (s *scheduleService) sweep(ctx context.Context, ref time.Time) error {
	_, err := s.reset(ctx, ref)
	return err
}

func (s *scheduleService) reset(ctx context.Context, ref time.Time) (int, error) {
	day, ok := models.WeekdayOf(ref)
	if !ok {
		day = 0
	}
	y, m, d := ref.Date()
	cutoff := repository.ElapsedCutoff{
		Day:         day,
		At:          models.TimeOfDayOf(ref),
		StaleBefore: time.Date(y, m, d, 0, 0, 0, 0, ref.Location()),
	}

	reset, err := s.repo.Schedule.ResetElapsed(ctx, cutoff)
	if err != nil {
		s.logger.Error("Ошибка сброса счётчиков интереса", zap.Error(err))
		return 0, persistence("reset_elapsed", err)
	}
	if len(reset) == 0 {
		return 0, nil
	}

	s.metrics.CountersReset(len(reset))
	for i := range reset {
		reset[i].InterestCount = 0
		s.notify(ctx, newInterestEvent(EventInterestReset, &reset[i], ref))
	}
	return len(reset), nil
}

func (s *scheduleService) currentSlot(ctx context.Context, key repository.SlotKey) (*response.SlotResponse, error) {
	slot, err := s.repo.Schedule.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, persistence("get_slot_by_key", err)
	}
	resp := toSlotResponse(slot)
	return &resp, nil
}

func (s *scheduleService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.dedupe.Release(ctx, key); err != nil {
		s.logger.Warn("Ошибка освобождения ключа идемпотентности", zap.String("key", key), zap.Error(err))
	}
}

func findToday(slots []models.Schedule, dep models.TimeOfDay, ref time.Time) (models.Schedule, bool) {
	for _, slot := range schedule.Today(slots, ref) {
		if slot.DepartureTime == dep {
			return slot, true
		}
	}
	return models.Schedule{}, false
}

func rejected(reason schedule.Reason) *response.CanRegisterResponse {
	return &response.CanRegisterResponse{CanRegister: false, Reason: string(reason)}
}

func newInterestEvent(eventType string, slot *models.Schedule, at time.Time) InterestEvent {
	return InterestEvent{
		Type:          eventType,
		LineID:        slot.LineID,
		ScheduleID:    slot.ID,
		DayOfWeek:     slot.DayOfWeek,
		DepartureTime: slot.DepartureTime,
		InterestCount: slot.InterestCount,
		At:            at,
	}
}
