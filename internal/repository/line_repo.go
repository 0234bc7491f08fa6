package repository

import (
	"context"

	"gorm.io/gorm"

	"busline/internal/models"
)

// LineRepository: доступ к линиям. Полноценный CRUD линий ведёт отдельный сервис,
// здесь только то, что нужно расписанию и сидированию.
type LineRepository interface {
	Create(ctx context.Context, line *models.Line) error
	GetByID(ctx context.Context, id uint) (*models.Line, error)
	GetByName(ctx context.Context, name string) (*models.Line, error)
	List(ctx context.Context, activeOnly bool) ([]models.Line, error)
	Delete(ctx context.Context, id uint) error
}

type lineRepo struct {
	db *gorm.DB
}

// NewLineRepo создаёт LineRepository.
func NewLineRepo(db *gorm.DB) LineRepository {
	return &lineRepo{db: db}
}

func (r *lineRepo) Create(ctx context.Context, line *models.Line) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *lineRepo) GetByID(ctx context.Context, id uint) (*models.Line, error) {
	var line models.Line
	if err := r.db.WithContext(ctx).First(&line, id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *lineRepo) GetByName(ctx context.Context, name string) (*models.Line, error) {
	var line models.Line
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *lineRepo) List(ctx context.Context, activeOnly bool) ([]models.Line, error) {
	var lines []models.Line
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&lines).Error
	return lines, err
}

// Delete удаляет линию вместе со всеми её слотами в одной транзакции.
func (r *lineRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("line_id = ?", id).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Line{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
