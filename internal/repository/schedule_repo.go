package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"busline/internal/models"
)

// SlotKey: естественный ключ слота.
type SlotKey struct {
	LineID    uint
	Day       models.Weekday
	Departure models.TimeOfDay
}

// InterestCheck вызывается внутри транзакции над заблокированным снимком слотов
// линии за день ключа. Ненулевая ошибка отменяет инкремент и возвращается как есть.
type InterestCheck func(daySlots []models.Schedule, target models.Schedule) error

// ElapsedCutoff задаёт границы сброса счётчиков интереса.
type ElapsedCutoff struct {
	Day         models.Weekday   // День недели момента сброса; 0 для выходных (сегодняшних слотов нет)
	At          models.TimeOfDay // Слоты дня Day с отправлением <= At считаются прошедшими
	StaleBefore time.Time        // Интерес, зарегистрированный раньше, относится к прошлому дню
}

// ScheduleRepository: доступ к слотам расписания.
type ScheduleRepository interface {
	Create(ctx context.Context, slot *models.Schedule) error
	Update(ctx context.Context, slot *models.Schedule) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Schedule, error)
	GetByKey(ctx context.Context, key SlotKey) (*models.Schedule, error)
	ListByLine(ctx context.Context, lineID uint) ([]models.Schedule, error)
	List(ctx context.Context, activeLinesOnly bool) ([]models.Schedule, error)
	IncrementInterest(ctx context.Context, key SlotKey, at time.Time, check InterestCheck) (*models.Schedule, error)
	ResetElapsed(ctx context.Context, cutoff ElapsedCutoff) ([]models.Schedule, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo создаёт ScheduleRepository.
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, slot *models.Schedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(slot).Error
}

// Update меняет день и время слота. Если меняется естественный ключ (день или
// время отправления), накопленный интерес относится к другому отправлению и
// обнуляется вместе с interest_updated_at.
func (r *scheduleRepo) Update(ctx context.Context, slot *models.Schedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.Schedule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stored, slot.ID).Error; err != nil {
			return err
		}

		columns := []string{"day_of_week", "arrival_time", "departure_time"}
		if stored.DayOfWeek != slot.DayOfWeek || stored.DepartureTime != slot.DepartureTime {
			slot.InterestCount = 0
			slot.InterestUpdatedAt = nil
			columns = append(columns, "interest_count", "interest_updated_at")
		}

		return tx.Model(&models.Schedule{ID: slot.ID}).
			Select(columns).
			Omit(clause.Associations).
			Updates(slot).Error
	})
}

func (r *scheduleRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Schedule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id uint) (*models.Schedule, error) {
	var slot models.Schedule
	if err := r.db.WithContext(ctx).Preload("Line").First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetByKey ищет слот по индексу (line_id, day_of_week, departure_time).
func (r *scheduleRepo) GetByKey(ctx context.Context, key SlotKey) (*models.Schedule, error) {
	var slot models.Schedule
	err := r.db.WithContext(ctx).
		Preload("Line").
		Where("line_id = ? AND day_of_week = ? AND departure_time = ?", key.LineID, key.Day, key.Departure).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByLine возвращает все слоты линии одним запросом. Это снимок, по которому
// считается текущее и следующее отправление.
func (r *scheduleRepo) ListByLine(ctx context.Context, lineID uint) ([]models.Schedule, error) {
	var slots []models.Schedule
	err := r.db.WithContext(ctx).
		Preload("Line").
		Where("line_id = ?", lineID).
		Order("day_of_week ASC, departure_time ASC, id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *scheduleRepo) List(ctx context.Context, activeLinesOnly bool) ([]models.Schedule, error) {
	var slots []models.Schedule
	db := r.db.WithContext(ctx).Preload("Line")
	if activeLinesOnly {
		db = db.Where("line_id IN (?)", r.db.Model(&models.Line{}).Select("id").Where("is_active = ?", true))
	}
	err := db.Order("line_id ASC, day_of_week ASC, departure_time ASC").Find(&slots).Error
	return slots, err
}

// IncrementInterest блокирует слоты линии за день ключа (SELECT ... FOR UPDATE),
// проверяет допуск через check и увеличивает счётчик на единицу атомарным UPDATE.
// Сброс счётчиков проходит через те же блокировки строк, поэтому параллельные
// инкремент и сброс не теряют и не воскрешают значения.
func (r *scheduleRepo) IncrementInterest(ctx context.Context, key SlotKey, at time.Time, check InterestCheck) (*models.Schedule, error) {
	var updated models.Schedule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var daySlots []models.Schedule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("line_id = ? AND day_of_week = ?", key.LineID, key.Day).
			Order("departure_time ASC, id ASC").
			Find(&daySlots).Error; err != nil {
			return err
		}

		var target *models.Schedule
		for i := range daySlots {
			if daySlots[i].DepartureTime == key.Departure {
				target = &daySlots[i]
				break
			}
		}
		if target == nil {
			return gorm.ErrRecordNotFound
		}

		if check != nil {
			if err := check(daySlots, *target); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Schedule{ID: target.ID}).
			Updates(map[string]any{
				"interest_count":      gorm.Expr("interest_count + ?", 1),
				"interest_updated_at": at,
			}).Error; err != nil {
			return err
		}

		return tx.Preload("Line").First(&updated, target.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ResetElapsed обнуляет счётчики прошедших отправлений одним UPDATE и возвращает
// изменённые строки.
func (r *scheduleRepo) ResetElapsed(ctx context.Context, cutoff ElapsedCutoff) ([]models.Schedule, error) {
	var reset []models.Schedule
	db := r.db.WithContext(ctx).
		Model(&reset).
		Clauses(clause.Returning{}).
		Where("interest_count > ?", 0)
	if cutoff.Day.Valid() {
		db = db.Where("((day_of_week = ? AND departure_time <= ?) OR interest_updated_at < ?)",
			cutoff.Day, cutoff.At, cutoff.StaleBefore)
	} else {
		db = db.Where("interest_updated_at < ?", cutoff.StaleBefore)
	}
	if err := db.Update("interest_count", 0).Error; err != nil {
		return nil, err
	}
	return reset, nil
}
