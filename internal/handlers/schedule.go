package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"busline/internal/response"
	"busline/internal/service"
)

// ScheduleHandler: публичные операции с линиями и расписанием.
type ScheduleHandler struct {
	svc service.ScheduleService
}

func NewScheduleHandler(svc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// ListLines возвращает линии
// @Summary		Список линий
// @Tags			lines
// @Produce		json
// @Param			active_only	query		bool	false	"Только активные линии"
// @Success		200			{array}		response.LineResponse
// @Failure		400			{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Failure		503			{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/lines [get]
func (h *ScheduleHandler) ListLines(c *gin.Context) {
	activeOnly, ok := boolQuery(c, "active_only", false)
	if !ok {
		return
	}
	lines, err := h.svc.ListLines(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// ListLineSchedules возвращает все слоты линии
// @Summary		Расписание линии
// @Description	Слоты линии, упорядоченные по дню недели и времени отправления
// @Tags			lines
// @Produce		json
// @Param			id	path		int	true	"ID линии"
// @Success		200	{array}		response.SlotResponse
// @Failure		400	{object}	response.ErrorResponse	"INVALID_LINE_ID"
// @Failure		404	{object}	response.ErrorResponse	"LINE_NOT_FOUND"
// @Failure		503	{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/lines/{id}/schedules [get]
func (h *ScheduleHandler) ListLineSchedules(c *gin.Context) {
	lineID, ok := lineIDParam(c)
	if !ok {
		return
	}
	slots, err := h.svc.ListLineSchedules(c.Request.Context(), lineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// ListSchedules возвращает слоты всех линий
// @Summary		Все слоты расписания
// @Tags			schedules
// @Produce		json
// @Param			active_lines_only	query		bool	false	"Только слоты активных линий"
// @Success		200					{array}		response.SlotResponse
// @Failure		503					{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/schedules [get]
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	activeOnly, ok := boolQuery(c, "active_lines_only", false)
	if !ok {
		return
	}
	slots, err := h.svc.ListSchedules(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// Timer возвращает состояние таймера линии
// @Summary		Таймер линии
// @Description	CURRENT: автобус на остановке; UPCOMING: сегодня будет отправление; NONE: сегодня отправлений нет
// @Tags			lines
// @Produce		json
// @Param			id	path		int	true	"ID линии"
// @Success		200	{object}	response.TimerResponse
// @Failure		404	{object}	response.ErrorResponse	"LINE_NOT_FOUND"
// @Failure		503	{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/lines/{id}/timer [get]
func (h *ScheduleHandler) Timer(c *gin.Context) {
	lineID, ok := lineIDParam(c)
	if !ok {
		return
	}
	timer, err := h.svc.Timer(c.Request.Context(), lineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, timer)
}

// Current возвращает слот, автобус которого сейчас у остановки
// @Summary		Текущее отправление
// @Description	null, если ни один автобус не находится в окне прибытия
// @Tags			schedules
// @Produce		json
// @Param			line_id	query		int	false	"ID линии; без него поиск по всем активным линиям"
// @Success		200		{object}	response.SlotResponse
// @Failure		404		{object}	response.ErrorResponse	"LINE_NOT_FOUND"
// @Router			/api/schedules/current [get]
func (h *ScheduleHandler) Current(c *gin.Context) {
	lineID, ok := optionalLineID(c)
	if !ok {
		return
	}
	slot, err := h.svc.Current(c.Request.Context(), lineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// Next возвращает ближайшее отправление
// @Summary		Следующее отправление
// @Description	today_only=true ищет только среди сегодняшних слотов, иначе просматривает следующие дни
// @Tags			schedules
// @Produce		json
// @Param			line_id		query		int		false	"ID линии"
// @Param			today_only	query		bool	false	"Только сегодня"
// @Success		200			{object}	response.SlotResponse
// @Failure		404			{object}	response.ErrorResponse	"LINE_NOT_FOUND"
// @Router			/api/schedules/next [get]
func (h *ScheduleHandler) Next(c *gin.Context) {
	lineID, ok := optionalLineID(c)
	if !ok {
		return
	}
	todayOnly, ok := boolQuery(c, "today_only", false)
	if !ok {
		return
	}
	slot, err := h.svc.Next(c.Request.Context(), lineID, todayOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// ByLineAndTime ищет слот по линии и времени отправления
// @Summary		Слот по времени отправления
// @Tags			lines
// @Produce		json
// @Param			id			path		int		true	"ID линии"
// @Param			departure	query		string	true	"Время отправления HH:MM"
// @Param			day			query		int		false	"День недели 1..5, по умолчанию сегодня"
// @Success		200			{object}	response.SlotResponse
// @Failure		400			{object}	response.ErrorResponse	"INVALID_SLOT_DEFINITION"
// @Failure		404			{object}	response.ErrorResponse	"LINE_NOT_FOUND, SLOT_NOT_FOUND"
// @Router			/api/lines/{id}/schedules/by-time [get]
func (h *ScheduleHandler) ByLineAndTime(c *gin.Context) {
	lineID, ok := lineIDParam(c)
	if !ok {
		return
	}
	var day *int
	if raw := c.Query("day"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_SLOT_DEFINITION",
				Message: "Некорректное описание слота",
				Details: "day_of_week: ожидается число 1..5",
			})
			return
		}
		day = &v
	}
	slot, err := h.svc.ByLineAndTime(c.Request.Context(), lineID, c.Query("departure"), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// GetSlot возвращает слот расписания по ID
// @Summary		Слот расписания
// @Tags			schedules
// @Produce		json
// @Param			id	path		int	true	"ID слота"
// @Success		200	{object}	response.SlotResponse
// @Failure		400	{object}	response.ErrorResponse	"INVALID_SCHEDULE_ID"
// @Failure		404	{object}	response.ErrorResponse	"SLOT_NOT_FOUND"
// @Failure		503	{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/schedules/{id} [get]
func (h *ScheduleHandler) GetSlot(c *gin.Context) {
	id, ok := slotIDParam(c)
	if !ok {
		return
	}
	slot, err := h.svc.GetSlot(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}
