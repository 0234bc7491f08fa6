// Package schedule содержит чистую логику расписания: вычисление повторений
// слотов, определение текущего и следующего отправления, проверку права на
// регистрацию интереса и сводный статус линии. Пакет не обращается к базе:
// все функции работают над уже загруженным снимком слотов и моментом "сейчас".
package schedule

import (
	"time"

	"busline/internal/models"
)

const daysPerWeek = 7

// NextOccurrence возвращает ближайший конкретный момент слота (day, at) после ref.
// Если слот сегодня и его время наступило или прошло (at <= время ref), он считается
// прошедшим и переносится на следующую неделю. Секунды и доли секунды обнуляются.
func NextOccurrence(day models.Weekday, at models.TimeOfDay, ref time.Time) time.Time {
	delta := int(day) - models.ISOWeekday(ref)
	if delta < 0 {
		delta += daysPerWeek
	}
	if delta == 0 && at <= models.TimeOfDayOf(ref) {
		delta = daysPerWeek
	}
	return at.On(ref.AddDate(0, 0, delta))
}

// OccurrenceInWeek возвращает момент слота в неделе, которой принадлежит ref
// (неделя начинается с понедельника). Результат может лежать в прошлом.
func OccurrenceInWeek(day models.Weekday, at models.TimeOfDay, ref time.Time) time.Time {
	delta := int(day) - models.ISOWeekday(ref)
	return at.On(ref.AddDate(0, 0, delta))
}

// Occurrence: конкретный экземпляр слота.
type Occurrence struct {
	Slot      models.Schedule
	Arrival   time.Time // Departure минус окно прибытия
	Departure time.Time
}

func (r Resolver) occurrence(slot models.Schedule, departure time.Time) *Occurrence {
	return &Occurrence{
		Slot:      slot,
		Arrival:   departure.Add(-r.grace()),
		Departure: departure,
	}
}
