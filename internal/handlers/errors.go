package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"busline/internal/response"
	"busline/internal/service"
)

// respondError переводит ошибку сервиса в HTTP-ответ.
func respondError(c *gin.Context, err error) {
	var (
		ineligible *service.IneligibleError
		invalid    *service.ValidationError
	)
	switch {
	case errors.Is(err, service.ErrLineNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "LINE_NOT_FOUND",
			Message: "Линия не найдена",
		})
	case errors.Is(err, service.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "SLOT_NOT_FOUND",
			Message: "Слот расписания не найден",
		})
	case errors.As(err, &ineligible):
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "INELIGIBLE_SLOT",
			Message: "Регистрация интереса на этот слот сейчас недоступна",
			Details: string(ineligible.Reason),
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_SLOT_DEFINITION",
			Message: "Некорректное описание слота",
			Details: invalid.Field + ": " + invalid.Message,
		})
	case errors.Is(err, service.ErrSlotExists):
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "SLOT_EXISTS",
			Message: "Слот с таким днём и временем отправления уже существует",
		})
	case errors.Is(err, service.ErrPersistence):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{
			Code:    "STORAGE_UNAVAILABLE",
			Message: "Хранилище временно недоступно",
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Внутренняя ошибка сервера",
		})
	}
}

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "Ошибка валидации данных",
		Details: err.Error(),
	})
}

func parseID(c *gin.Context, param, code, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    code,
			Message: message,
		})
		return 0, false
	}
	return uint(id), true
}

func lineIDParam(c *gin.Context) (uint, bool) {
	return parseID(c, "id", "INVALID_LINE_ID", "Некорректный ID линии")
}

// optionalLineID читает необязательный query-параметр line_id.
func optionalLineID(c *gin.Context) (*uint, bool) {
	raw := c.Query("line_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_LINE_ID",
			Message: "Некорректный ID линии",
		})
		return nil, false
	}
	lineID := uint(id)
	return &lineID, true
}

func boolQuery(c *gin.Context, key string, def bool) (bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: key + ": ожидается true или false",
		})
		return false, false
	}
	return v, true
}
