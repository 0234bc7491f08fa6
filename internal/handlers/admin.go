package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/response"
	"busline/internal/service"
)

func slotIDParam(c *gin.Context) (uint, bool) {
	return parseID(c, "id", "INVALID_SCHEDULE_ID", "Некорректный ID слота")
}

// CreateSlot добавляет слот в расписание
// @Summary		Создание слота
// @Description	Если arrival_time не задано, оно равно времени отправления минус окно прибытия
// @Tags			admin
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			slot	body		service.SlotInput	true	"Слот"
// @Success		201		{object}	response.SlotResponse
// @Failure		400		{object}	response.ErrorResponse	"VALIDATION_ERROR, INVALID_SLOT_DEFINITION"
// @Failure		401		{object}	response.ErrorResponse	"NO_AUTH_HEADER, INVALID_TOKEN"
// @Failure		403		{object}	response.ErrorResponse	"FORBIDDEN"
// @Failure		404		{object}	response.ErrorResponse	"LINE_NOT_FOUND"
// @Failure		409		{object}	response.ErrorResponse	"SLOT_EXISTS"
// @Router			/api/admin/schedules [post]
func (h *ScheduleHandler) CreateSlot(c *gin.Context) {
	var in service.SlotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		validationError(c, err)
		return
	}
	slot, err := h.svc.CreateSlot(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// UpdateSlot меняет день или время слота
// @Summary		Изменение слота
// @Tags			admin
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id		path		int					true	"ID слота"
// @Param			patch	body		service.SlotPatch	true	"Изменяемые поля"
// @Success		200		{object}	response.SlotResponse
// @Failure		400		{object}	response.ErrorResponse	"INVALID_SLOT_DEFINITION"
// @Failure		404		{object}	response.ErrorResponse	"SLOT_NOT_FOUND"
// @Failure		409		{object}	response.ErrorResponse	"SLOT_EXISTS"
// @Router			/api/admin/schedules/{id} [put]
func (h *ScheduleHandler) UpdateSlot(c *gin.Context) {
	id, ok := slotIDParam(c)
	if !ok {
		return
	}
	var patch service.SlotPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		validationError(c, err)
		return
	}
	slot, err := h.svc.UpdateSlot(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// DeleteSlot удаляет слот
// @Summary		Удаление слота
// @Tags			admin
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID слота"
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"SLOT_NOT_FOUND"
// @Router			/api/admin/schedules/{id} [delete]
func (h *ScheduleHandler) DeleteSlot(c *gin.Context) {
	id, ok := slotIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSlot(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Слот удалён"})
}

// ResetElapsed обнуляет счётчики прошедших отправлений
// @Summary		Сброс счётчиков интереса
// @Description	Обнуляет счётчики всех слотов, отправление которых уже прошло
// @Tags			admin
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	response.ResetResponse
// @Failure		503	{object}	response.ErrorResponse	"STORAGE_UNAVAILABLE"
// @Router			/api/admin/schedules/reset-elapsed [post]
func (h *ScheduleHandler) ResetElapsed(c *gin.Context) {
	n, err := h.svc.ResetElapsed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.ResetResponse{Reset: n})
}
