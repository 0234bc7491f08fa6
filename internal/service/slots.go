package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"busline/internal/models"
	"busline/internal/response"
)

// SlotInput: описание нового слота расписания.
type SlotInput struct {
	LineID        uint    `json:"line_id" binding:"required" example:"3"`
	DayOfWeek     int     `json:"day_of_week" binding:"required" example:"1"`
	ArrivalTime   *string `json:"arrival_time,omitempty" example:"12:25"` // По умолчанию отправление минус окно прибытия
	DepartureTime string  `json:"departure_time" binding:"required" example:"12:30"`
}

// SlotPatch: частичное изменение слота. Пустые поля не меняются.
type SlotPatch struct {
	DayOfWeek     *int    `json:"day_of_week,omitempty" example:"2"`
	ArrivalTime   *string `json:"arrival_time,omitempty" example:"08:55"`
	DepartureTime *string `json:"departure_time,omitempty" example:"09:00"`
}

func (s *scheduleService) CreateSlot(ctx context.Context, in SlotInput) (*response.SlotResponse, error) {
	day, err := models.ParseWeekday(in.DayOfWeek)
	if err != nil {
		return nil, invalid("day_of_week", err.Error())
	}
	departure, err := parseDeparture(in.DepartureTime)
	if err != nil {
		return nil, err
	}
	arrival := departure.Sub(s.resolver.Window())
	if in.ArrivalTime != nil {
		if arrival, err = parseArrival(*in.ArrivalTime); err != nil {
			return nil, err
		}
	}
	if arrival > departure {
		return nil, invalid("arrival_time", "время прибытия позже времени отправления")
	}

	if err := s.ensureLine(ctx, in.LineID); err != nil {
		return nil, err
	}

	slot := &models.Schedule{
		LineID:        in.LineID,
		DayOfWeek:     day,
		ArrivalTime:   arrival,
		DepartureTime: departure,
	}
	if err := s.repo.Schedule.Create(ctx, slot); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotExists
		}
		s.logger.Error("Ошибка создания слота", zap.Uint("line_id", in.LineID), zap.Error(err))
		return nil, persistence("create_slot", err)
	}

	s.logger.Info("Создан слот расписания",
		zap.Uint("schedule_id", slot.ID),
		zap.Uint("line_id", slot.LineID),
		zap.Stringer("day", slot.DayOfWeek),
		zap.Stringer("departure", slot.DepartureTime),
	)
	return s.slotByID(ctx, slot.ID)
}

func (s *scheduleService) UpdateSlot(ctx context.Context, id uint, patch SlotPatch) (*response.SlotResponse, error) {
	slot, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Ошибка загрузки слота", zap.Uint("schedule_id", id), zap.Error(err))
		return nil, persistence("get_slot", err)
	}

	prev := *slot

	if patch.DayOfWeek != nil {
		if slot.DayOfWeek, err = models.ParseWeekday(*patch.DayOfWeek); err != nil {
			return nil, invalid("day_of_week", err.Error())
		}
	}
	if patch.DepartureTime != nil {
		if slot.DepartureTime, err = parseDeparture(*patch.DepartureTime); err != nil {
			return nil, err
		}
	}
	if patch.ArrivalTime != nil {
		if slot.ArrivalTime, err = parseArrival(*patch.ArrivalTime); err != nil {
			return nil, err
		}
	}
	if slot.ArrivalTime > slot.DepartureTime {
		return nil, invalid("arrival_time", "время прибытия позже времени отправления")
	}

	if err := s.repo.Schedule.Update(ctx, slot); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrSlotNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrSlotExists
		}
		s.logger.Error("Ошибка обновления слота", zap.Uint("schedule_id", id), zap.Error(err))
		return nil, persistence("update_slot", err)
	}

	s.logger.Info("Слот расписания изменён", zap.Uint("schedule_id", id))
	if prev.InterestCount > 0 && slot.InterestCount == 0 {
		prev.InterestCount = 0
		s.notify(ctx, newInterestEvent(EventInterestReset, &prev, s.clock()))
	}
	return s.slotByID(ctx, id)
}

func (s *scheduleService) DeleteSlot(ctx context.Context, id uint) error {
	if err := s.repo.Schedule.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("Ошибка удаления слота", zap.Uint("schedule_id", id), zap.Error(err))
		return persistence("delete_slot", err)
	}
	s.logger.Info("Слот расписания удалён", zap.Uint("schedule_id", id))
	return nil
}

func (s *scheduleService) slotByID(ctx context.Context, id uint) (*response.SlotResponse, error) {
	slot, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, persistence("get_slot", err)
	}
	resp := toSlotResponse(slot)
	return &resp, nil
}

func parseArrival(value string) (models.TimeOfDay, error) {
	arrival, err := models.ParseTimeOfDay(value)
	if err != nil {
		return 0, invalid("arrival_time", err.Error())
	}
	return arrival, nil
}
