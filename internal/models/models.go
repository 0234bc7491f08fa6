package models

import (
	"time"

	"gorm.io/gorm"
)

type City struct {
	gorm.Model
	Name    string `gorm:"not null"`
	State   string `gorm:"not null"`
	Country string `gorm:"not null"`
	Lines   []Line `gorm:"foreignKey:CityID"`
}

// Line: автобусная линия. Удаление линии каскадно удаляет её расписание
// (ограничение внешнего ключа ON DELETE CASCADE на schedules.line_id).
type Line struct {
	ID          uint       `gorm:"primaryKey"`
	CityID      *uint      `gorm:"index"`                 // Домашний город линии
	Name        string     `gorm:"uniqueIndex;not null"`  // Уникальное название линии
	IsActive    bool       `gorm:"not null;default:true"` // Линия обслуживается
	ActiveBuses int        `gorm:"not null;default:0"`    // Количество закреплённых автобусов
	Schedules   []Schedule `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Schedule: еженедельно повторяющийся слот отправления линии.
// Естественный ключ (line_id, day_of_week, departure_time) уникален и используется
// для поиска по времени в формате "HH:MM".
type Schedule struct {
	ID                uint       `gorm:"primaryKey"`
	LineID            uint       `gorm:"not null;uniqueIndex:idx_schedule_slot,priority:1"`
	Line              Line       `gorm:"foreignKey:LineID"`
	DayOfWeek         Weekday    `gorm:"not null;uniqueIndex:idx_schedule_slot,priority:2"`
	ArrivalTime       TimeOfDay  `gorm:"type:varchar(5);not null"`
	DepartureTime     TimeOfDay  `gorm:"type:varchar(5);not null;uniqueIndex:idx_schedule_slot,priority:3;index"`
	InterestCount     int        `gorm:"not null;default:0;check:chk_schedules_interest_count,interest_count >= 0"`
	InterestUpdatedAt *time.Time // Момент последней регистрации интереса (nil, если интереса не было)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
