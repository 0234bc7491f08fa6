package repository

import "gorm.io/gorm"

// Repository: точка доступа ко всем репозиториям.
type Repository struct {
	Line     LineRepository
	Schedule ScheduleRepository
}

// NewRepository создаёт репозитории поверх одного подключения gorm.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Line:     NewLineRepo(db),
		Schedule: NewScheduleRepo(db),
	}
}
