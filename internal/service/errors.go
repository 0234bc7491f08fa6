package service

import (
	"errors"
	"fmt"

	"busline/internal/schedule"
)

var (
	// ErrNotFound: линия или слот не найдены.
	ErrNotFound = errors.New("не найдено")
	// ErrLineNotFound: линия не найдена.
	ErrLineNotFound = fmt.Errorf("линия %w", ErrNotFound)
	// ErrSlotNotFound: слот не найден.
	ErrSlotNotFound = fmt.Errorf("слот расписания %w", ErrNotFound)
	// ErrIneligibleSlot: регистрация интереса на слот сейчас запрещена.
	ErrIneligibleSlot = errors.New("регистрация интереса на этот слот недоступна")
	// ErrInvalidSlotDefinition: некорректные день недели или время слота.
	ErrInvalidSlotDefinition = errors.New("некорректное описание слота")
	// ErrSlotExists: слот с таким днём и временем отправления у линии уже есть.
	ErrSlotExists = errors.New("слот расписания уже существует")
	// ErrPersistence: ошибка хранилища.
	ErrPersistence = errors.New("ошибка хранилища")
)

// IneligibleError сообщает, какое правило отклонило регистрацию.
type IneligibleError struct {
	Reason schedule.Reason
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIneligibleSlot.Error(), e.Reason)
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligibleSlot
}

// ValidationError описывает ошибку в поле описания слота.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidSlotDefinition.Error(), e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSlotDefinition
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError оборачивает ошибку хранилища с названием операции.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence.Error(), e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
