package response

import "time"

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"Операция успешно выполнена"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Код ошибки для программной обработки
	// example: INELIGIBLE_SLOT
	Code string `json:"code"`

	// Человекочитаемое сообщение об ошибке
	// example: Регистрация интереса недоступна
	Message string `json:"message"`

	// Дополнительные детали об ошибке (опционально)
	// example: already_departed
	Details string `json:"details,omitempty"`
}

// SlotResponse: сводка по слоту расписания
type SlotResponse struct {
	ID            uint       `json:"id" example:"42"`
	LineID        uint       `json:"line_id" example:"3"`
	LineName      string     `json:"line_name" example:"Santana"`
	ArrivalTime   string     `json:"arrival_time" example:"12:25"`
	DepartureTime string     `json:"departure_time" example:"12:30"`
	DayOfWeek     int        `json:"day_of_week" example:"1"`
	InterestCount int        `json:"interest_count" example:"7"`
	DepartsAt     *time.Time `json:"departs_at,omitempty"` // Ближайший момент отправления, если он вычислялся
}

// LineResponse: сводка по линии
type LineResponse struct {
	ID          uint   `json:"id" example:"3"`
	Name        string `json:"name" example:"Santana"`
	CityID      *uint  `json:"city_id,omitempty" example:"1"`
	IsActive    bool   `json:"is_active" example:"true"`
	ActiveBuses int    `json:"active_buses" example:"2"`
}

// TimerResponse: состояние таймера линии
type TimerResponse struct {
	LineID uint `json:"line_id" example:"3"`

	// Одно из CURRENT, UPCOMING, NONE
	// example: UPCOMING
	Status  string        `json:"status"`
	Current *SlotResponse `json:"current"`
	Next    *SlotResponse `json:"next"`
}

// CanRegisterResponse: можно ли сейчас зарегистрировать интерес
type CanRegisterResponse struct {
	CanRegister bool `json:"can_register" example:"true"`

	// Правило, по которому принято решение
	// example: next_departure
	Reason string `json:"reason"`
}

// ResetResponse: результат ручного сброса счётчиков
type ResetResponse struct {
	Reset int `json:"reset" example:"4"`
}
