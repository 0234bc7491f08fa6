package schedule

import (
	"time"

	"busline/internal/models"
)

// Reason: правило, по которому принято решение о регистрации интереса.
type Reason string

const (
	ReasonNextDeparture   Reason = "next_departure"   // Слот является ближайшим отправлением сегодня
	ReasonArriving        Reason = "arriving"         // Автобус прибывает или уже на месте
	ReasonAlreadyDeparted Reason = "already_departed" // Отправление этой недели уже прошло
	ReasonNotNext         Reason = "not_next"         // Слот не ближайший и не текущий
	ReasonUnknownSlot     Reason = "unknown_slot"     // Слот не найден
)

// Allowed сообщает, разрешает ли причина регистрацию.
func (r Reason) Allowed() bool {
	return r == ReasonNextDeparture || r == ReasonArriving
}

// Verdict: решение шлюза допуска.
type Verdict struct {
	Allowed bool
	Reason  Reason
}

// Check применяет правила допуска к target по порядку:
//  1. отправление target в неделе ref наступило или прошло: отказ;
//  2. target является ближайшим сегодняшним отправлением линии: допуск;
//  3. ref внутри окна прибытия target: допуск;
//  4. иначе отказ.
//
// lineSlots: снимок слотов той же линии, по которому ищется ближайшее отправление.
func (r Resolver) Check(lineSlots []models.Schedule, target models.Schedule, ref time.Time) Verdict {
	departure := OccurrenceInWeek(target.DayOfWeek, target.DepartureTime, ref)
	if !departure.After(ref) {
		return Verdict{Reason: ReasonAlreadyDeparted}
	}
	if next := r.NextToday(lineSlots, ref); next != nil && next.Slot.ID == target.ID {
		return Verdict{Allowed: true, Reason: ReasonNextDeparture}
	}
	if r.inArrivalWindow(departure, ref) {
		return Verdict{Allowed: true, Reason: ReasonArriving}
	}
	return Verdict{Reason: ReasonNotNext}
}

// CanRegister: булева форма Check.
func (r Resolver) CanRegister(lineSlots []models.Schedule, target models.Schedule, ref time.Time) bool {
	return r.Check(lineSlots, target, ref).Allowed
}
