package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"busline/internal/models"
	"busline/internal/repository"
	"busline/internal/response"
	"busline/internal/schedule"
)

func (s *scheduleService) ListLines(ctx context.Context, activeOnly bool) ([]response.LineResponse, error) {
	lines, err := s.repo.Line.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("Ошибка загрузки линий", zap.Error(err))
		return nil, persistence("list_lines", err)
	}
	result := make([]response.LineResponse, 0, len(lines))
	for i := range lines {
		result = append(result, toLineResponse(&lines[i]))
	}
	return result, nil
}

func (s *scheduleService) ListLineSchedules(ctx context.Context, lineID uint) ([]response.SlotResponse, error) {
	ref := s.clock()
	slots, err := s.lineSnapshot(ctx, lineID, ref)
	if err != nil {
		return nil, err
	}
	return toSlotResponses(slots), nil
}

func (s *scheduleService) ListSchedules(ctx context.Context, activeLinesOnly bool) ([]response.SlotResponse, error) {
	if err := s.sweep(ctx, s.clock()); err != nil {
		return nil, err
	}
	slots, err := s.repo.Schedule.List(ctx, activeLinesOnly)
	if err != nil {
		s.logger.Error("Ошибка загрузки расписания", zap.Error(err))
		return nil, persistence("list_schedules", err)
	}
	return toSlotResponses(slots), nil
}

// Timer возвращает статус линии CURRENT / UPCOMING / NONE вместе с текущим и
// ближайшим сегодняшним отправлением.
func (s *scheduleService) Timer(ctx context.Context, lineID uint) (*response.TimerResponse, error) {
	ref := s.clock()
	slots, err := s.lineSnapshot(ctx, lineID, ref)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := s.resolver.Resolve(slots, ref)
	s.metrics.ObserveResolve(time.Since(start))

	return &response.TimerResponse{
		LineID:  lineID,
		Status:  string(schedule.StatusOf(res)),
		Current: toOccurrenceResponse(res.Current),
		Next:    toOccurrenceResponse(res.NextToday),
	}, nil
}

// Current возвращает слот, автобус которого сейчас у остановки. Без lineID
// поиск идёт по всем активным линиям.
func (s *scheduleService) Current(ctx context.Context, lineID *uint) (*response.SlotResponse, error) {
	ref := s.clock()
	slots, err := s.snapshot(ctx, lineID, ref)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cur := s.resolver.Current(slots, ref)
	s.metrics.ObserveResolve(time.Since(start))

	return toOccurrenceResponse(cur), nil
}

// Next возвращает ближайшее отправление: только сегодня или в любой день недели.
func (s *scheduleService) Next(ctx context.Context, lineID *uint, todayOnly bool) (*response.SlotResponse, error) {
	ref := s.clock()
	slots, err := s.snapshot(ctx, lineID, ref)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var next *schedule.Occurrence
	if todayOnly {
		next = s.resolver.NextToday(slots, ref)
	} else {
		next = s.resolver.NextAnyDay(slots, ref)
	}
	s.metrics.ObserveResolve(time.Since(start))

	return toOccurrenceResponse(next), nil
}

// ByLineAndTime ищет слот по естественному ключу. По умолчанию берётся сегодняшний день.
func (s *scheduleService) ByLineAndTime(ctx context.Context, lineID uint, departure string, day *int) (*response.SlotResponse, error) {
	dep, err := parseDeparture(departure)
	if err != nil {
		return nil, err
	}
	ref := s.clock()

	var weekday models.Weekday
	if day != nil {
		if weekday, err = models.ParseWeekday(*day); err != nil {
			return nil, invalid("day_of_week", err.Error())
		}
	} else {
		var ok bool
		if weekday, ok = models.WeekdayOf(ref); !ok {
			return nil, ErrSlotNotFound
		}
	}

	if err := s.ensureLine(ctx, lineID); err != nil {
		return nil, err
	}
	if err := s.sweep(ctx, ref); err != nil {
		return nil, err
	}

	slot, err := s.repo.Schedule.GetByKey(ctx, repository.SlotKey{LineID: lineID, Day: weekday, Departure: dep})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Ошибка поиска слота",
			zap.Uint("line_id", lineID),
			zap.String("departure", dep.String()),
			zap.Error(err),
		)
		return nil, persistence("get_slot_by_key", err)
	}

	resp := toSlotResponse(slot)
	departsAt := schedule.NextOccurrence(slot.DayOfWeek, slot.DepartureTime, ref)
	resp.DepartsAt = &departsAt
	return &resp, nil
}

// GetSlot возвращает слот по ID вместе с ближайшим моментом отправления.
func (s *scheduleService) GetSlot(ctx context.Context, id uint) (*response.SlotResponse, error) {
	ref := s.clock()
	if err := s.sweep(ctx, ref); err != nil {
		return nil, err
	}
	slot, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Ошибка загрузки слота", zap.Uint("schedule_id", id), zap.Error(err))
		return nil, persistence("get_slot", err)
	}

	resp := toSlotResponse(slot)
	departsAt := schedule.NextOccurrence(slot.DayOfWeek, slot.DepartureTime, ref)
	resp.DepartsAt = &departsAt
	return &resp, nil
}

// snapshot загружает слоты одной линии или всех активных линий одним запросом,
// предварительно сбросив счётчики прошедших отправлений.
func (s *scheduleService) snapshot(ctx context.Context, lineID *uint, ref time.Time) ([]models.Schedule, error) {
	if lineID != nil {
		return s.lineSnapshot(ctx, *lineID, ref)
	}
	if err := s.sweep(ctx, ref); err != nil {
		return nil, err
	}
	slots, err := s.repo.Schedule.List(ctx, true)
	if err != nil {
		s.logger.Error("Ошибка загрузки расписания", zap.Error(err))
		return nil, persistence("list_schedules", err)
	}
	return slots, nil
}

func (s *scheduleService) lineSnapshot(ctx context.Context, lineID uint, ref time.Time) ([]models.Schedule, error) {
	if err := s.ensureLine(ctx, lineID); err != nil {
		return nil, err
	}
	if err := s.sweep(ctx, ref); err != nil {
		return nil, err
	}
	slots, err := s.repo.Schedule.ListByLine(ctx, lineID)
	if err != nil {
		s.logger.Error("Ошибка загрузки расписания линии", zap.Uint("line_id", lineID), zap.Error(err))
		return nil, persistence("list_line_schedules", err)
	}
	return slots, nil
}

func (s *scheduleService) ensureLine(ctx context.Context, lineID uint) error {
	if _, err := s.repo.Line.GetByID(ctx, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineNotFound
		}
		s.logger.Error("Ошибка загрузки линии", zap.Uint("line_id", lineID), zap.Error(err))
		return persistence("get_line", err)
	}
	return nil
}

func parseDeparture(value string) (models.TimeOfDay, error) {
	dep, err := models.ParseTimeOfDay(value)
	if err != nil {
		return 0, invalid("departure_time", err.Error())
	}
	return dep, nil
}
