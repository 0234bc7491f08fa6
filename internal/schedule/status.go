package schedule

import (
	"time"

	"busline/internal/models"
)

// Status: состояние таймера линии для отображения.
type Status string

const (
	StatusCurrent  Status = "CURRENT"  // Автобус на остановке
	StatusUpcoming Status = "UPCOMING" // Сегодня ещё будет отправление
	StatusNone     Status = "NONE"     // Сегодня отправлений нет или все прошли
)

// Status сворачивает результат Resolver в три состояния.
func (r Resolver) Status(slots []models.Schedule, ref time.Time) Status {
	return StatusOf(r.Resolve(slots, ref))
}

// StatusOf строит статус по уже вычисленному Resolution.
func StatusOf(res Resolution) Status {
	switch {
	case res.Current != nil:
		return StatusCurrent
	case res.NextToday != nil:
		return StatusUpcoming
	default:
		return StatusNone
	}
}
