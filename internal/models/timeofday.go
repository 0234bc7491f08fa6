package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const timeOfDayLayout = "15:04"

// TimeOfDay: время суток с точностью до минуты, без даты.
// Значение хранит количество минут от полуночи. В базе хранится строкой "HH:MM",
// поэтому лексикографическое сравнение в SQL совпадает с хронологическим.
type TimeOfDay int

const minutesPerDay = 24 * 60

// NewTimeOfDay собирает время из часов и минут.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("некорректное время %02d:%02d", hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTimeOfDay: вариант NewTimeOfDay для констант и тестов.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay разбирает строку "HH:MM". Допускаются секунды ("HH:MM:SS"),
// они отбрасываются.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	layout := timeOfDayLayout
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	parsed, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("некорректное время %q, ожидается HH:MM", s)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

// TimeOfDayOf возвращает время суток момента t, секунды отбрасываются.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid сообщает, лежит ли значение внутри суток.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Sub вычитает длительность, не уходя за полночь назад.
func (t TimeOfDay) Sub(d time.Duration) TimeOfDay {
	res := t - TimeOfDay(d/time.Minute)
	if res < 0 {
		return 0
	}
	return res
}

// On возвращает момент с датой из day и временем t; секунды обнуляются.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location())
}

// Value реализует driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("некорректное время суток: %d минут", int(t))
	}
	return t.String(), nil
}

// Scan реализует sql.Scanner. Принимает строки "HH:MM"/"HH:MM:SS" и time.Time.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case time.Time:
		*t = TimeOfDayOf(v)
	default:
		return fmt.Errorf("неподдерживаемый тип времени суток %T", src)
	}
	return nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
