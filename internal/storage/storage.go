package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"busline/internal/config"
	"busline/internal/models"
)

// ConnectDatabase открывает подключение к PostgreSQL и настраивает пул.
// Ошибки драйвера переводятся в ошибки gorm (gorm.ErrDuplicatedKey и т.п.).
func ConnectDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула соединений: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	log.Info("Подключение к базе данных успешно!",
		zap.String("host", cfg.Host),
		zap.String("db", cfg.Name),
	)
	return db, nil
}

// Migrate создаёт таблицы городов, линий и слотов расписания.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.City{}, &models.Line{}, &models.Schedule{}); err != nil {
		return fmt.Errorf("ошибка при миграции: %w", err)
	}
	return nil
}

// InitRedis создаёт клиента Redis и проверяет соединение.
func InitRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
