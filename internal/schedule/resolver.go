package schedule

import (
	"time"

	"busline/internal/models"
)

// DefaultGraceWindow: за сколько до отправления автобус считается прибывающим.
const DefaultGraceWindow = 5 * time.Minute

// Resolver классифицирует слоты относительно момента "сейчас".
// Нулевое значение использует DefaultGraceWindow.
type Resolver struct {
	Grace time.Duration
}

// NewResolver создаёт Resolver с заданным окном прибытия.
func NewResolver(grace time.Duration) Resolver {
	return Resolver{Grace: grace}
}

// Window возвращает действующее окно прибытия.
func (r Resolver) Window() time.Duration {
	return r.grace()
}

func (r Resolver) grace() time.Duration {
	if r.Grace <= 0 {
		return DefaultGraceWindow
	}
	return r.Grace
}

// Resolution: результат разбора слотов линии на момент ref.
type Resolution struct {
	Current    *Occurrence // Автобус на месте (окно прибытия)
	NextToday  *Occurrence // Ближайшее отправление сегодня
	NextAnyDay *Occurrence // NextToday либо первое отправление в ближайший день с расписанием
}

// Resolve вычисляет все три результата по одному снимку слотов.
func (r Resolver) Resolve(slots []models.Schedule, ref time.Time) Resolution {
	res := Resolution{
		Current:   r.Current(slots, ref),
		NextToday: r.NextToday(slots, ref),
	}
	if res.NextToday != nil {
		res.NextAnyDay = res.NextToday
	} else {
		res.NextAnyDay = r.nextOnLaterDay(slots, ref)
	}
	return res
}

// Today возвращает слоты, у которых день недели совпадает с днём ref.
func Today(slots []models.Schedule, ref time.Time) []models.Schedule {
	day, ok := models.WeekdayOf(ref)
	if !ok {
		return nil
	}
	today := make([]models.Schedule, 0, len(slots))
	for _, s := range slots {
		if s.DayOfWeek == day {
			today = append(today, s)
		}
	}
	return today
}

// Current возвращает сегодняшний слот, для которого departure-grace <= ref <= departure.
// При пересечении окон выбирается слот с самым ранним отправлением, затем с меньшим ID.
func (r Resolver) Current(slots []models.Schedule, ref time.Time) *Occurrence {
	var best *Occurrence
	for _, s := range Today(slots, ref) {
		departure := s.DepartureTime.On(ref)
		if !r.inArrivalWindow(departure, ref) {
			continue
		}
		if best == nil || earlier(s, departure, best) {
			best = r.occurrence(s, departure)
		}
	}
	return best
}

// NextToday возвращает сегодняшний слот с минимальным отправлением строго после ref.
func (r Resolver) NextToday(slots []models.Schedule, ref time.Time) *Occurrence {
	var best *Occurrence
	for _, s := range Today(slots, ref) {
		departure := s.DepartureTime.On(ref)
		if !departure.After(ref) {
			continue
		}
		if best == nil || earlier(s, departure, best) {
			best = r.occurrence(s, departure)
		}
	}
	return best
}

// NextAnyDay возвращает NextToday, а если сегодня отправлений больше нет, то самый
// ранний слот первого дня с расписанием, просматривая дни начиная с завтрашнего.
func (r Resolver) NextAnyDay(slots []models.Schedule, ref time.Time) *Occurrence {
	if next := r.NextToday(slots, ref); next != nil {
		return next
	}
	return r.nextOnLaterDay(slots, ref)
}

// nextOnLaterDay просматривает смещения 1..7: седьмой день означает тот же день недели
// через неделю, поэтому линия с единственным прошедшим сегодня слотом всё равно
// получает следующее отправление.
func (r Resolver) nextOnLaterDay(slots []models.Schedule, ref time.Time) *Occurrence {
	if len(slots) == 0 {
		return nil
	}
	for offset := 1; offset <= daysPerWeek; offset++ {
		date := ref.AddDate(0, 0, offset)
		var best *Occurrence
		for _, s := range Today(slots, date) {
			departure := s.DepartureTime.On(date)
			if best == nil || earlier(s, departure, best) {
				best = r.occurrence(s, departure)
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

func (r Resolver) inArrivalWindow(departure, ref time.Time) bool {
	arrival := departure.Add(-r.grace())
	return !ref.Before(arrival) && !ref.After(departure)
}

func earlier(s models.Schedule, departure time.Time, than *Occurrence) bool {
	if departure.Equal(than.Departure) {
		return s.ID < than.Slot.ID
	}
	return departure.Before(than.Departure)
}
