package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader: заголовок ключа идемпотентности регистрации интереса.
const IdempotencyHeader = "Idempotency-Key"

type InterestRequest struct {
	DepartureTime string `json:"departure_time" binding:"required" example:"18:00"`
}

// CanRegister проверяет, можно ли зарегистрировать интерес
// @Summary		Проверка регистрации интереса
// @Description	Интерес принимается для ближайшего сегодняшнего отправления или автобуса в окне прибытия
// @Tags			interest
// @Produce		json
// @Param			id			path		int		true	"ID линии"
// @Param			departure	query		string	true	"Время отправления HH:MM"
// @Success		200			{object}	response.CanRegisterResponse
// @Failure		400			{object}	response.ErrorResponse	"INVALID_SLOT_DEFINITION"
// @Failure		503			{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/lines/{id}/schedules/can-register [get]
func (h *ScheduleHandler) CanRegister(c *gin.Context) {
	lineID, ok := lineIDParam(c)
	if !ok {
		return
	}
	res, err := h.svc.CanRegister(c.Request.Context(), lineID, c.Query("departure"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RegisterInterest регистрирует интерес пассажира к сегодняшнему отправлению
// @Summary		Регистрация интереса
// @Description	Увеличивает счётчик интереса слота на единицу и уведомляет подписчиков линии
// @Tags			interest
// @Accept			json
// @Produce		json
// @Param			id				path		int				true	"ID линии"
// @Param			Idempotency-Key	header		string			false	"Ключ идемпотентности"
// @Param			request			body		InterestRequest	true	"Время отправления"
// @Success		200				{object}	response.SlotResponse
// @Failure		400				{object}	response.ErrorResponse	"VALIDATION_ERROR, INVALID_SLOT_DEFINITION"
// @Failure		404				{object}	response.ErrorResponse	"LINE_NOT_FOUND, SLOT_NOT_FOUND"
// @Failure		409				{object}	response.ErrorResponse	"INELIGIBLE_SLOT"
// @Failure		429				{object}	response.ErrorResponse	"RATE_LIMITED"
// @Failure		503				{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/lines/{id}/schedules/interest [post]
func (h *ScheduleHandler) RegisterInterest(c *gin.Context) {
	lineID, ok := lineIDParam(c)
	if !ok {
		return
	}
	var req InterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	slot, err := h.svc.RegisterInterest(c.Request.Context(), lineID, req.DepartureTime, c.GetHeader(IdempotencyHeader))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}
