package models

import (
	"fmt"
	"time"
)

// Weekday: день недели слота в нумерации 1 (понедельник) .. 5 (пятница).
// Выходные в расписании не поддерживаются.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = map[Weekday]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
}

// Valid сообщает, входит ли значение в диапазон 1..5.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Weekday(%d)", int(d))
}

// ISOWeekday возвращает номер дня недели по ISO 8601: понедельник = 1, воскресенье = 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekdayOf возвращает день недели момента t. ok == false для субботы и воскресенья.
func WeekdayOf(t time.Time) (Weekday, bool) {
	d := Weekday(ISOWeekday(t))
	return d, d.Valid()
}

// ParseWeekday проверяет числовое значение дня недели.
func ParseWeekday(v int) (Weekday, error) {
	d := Weekday(v)
	if !d.Valid() {
		return 0, fmt.Errorf("день недели %d вне диапазона 1..5", v)
	}
	return d, nil
}
