package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"busline/internal/auth"
	"busline/internal/config"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
	"busline/internal/service"
	"busline/internal/storage"
)

// Отправления линий, одинаковые для всех рабочих дней.
var departures = map[string][]string{
	"Santana":       {"06:15", "07:20", "08:15", "12:30", "17:45", "18:30"},
	"Vila Madalena": {"06:30", "07:45", "08:30", "12:15", "17:30", "19:00"},
	"Ipiranga":      {"06:00", "07:15", "08:45", "12:45", "17:15", "18:45"},
	"Butantã":       {"06:45", "07:30", "08:00", "12:00", "17:00", "19:15"},
	"Mooca":         {"06:10", "07:25", "08:40", "12:20", "17:35", "18:50"},
	"Tatuapé":       {"06:20", "07:35", "08:25", "12:35", "17:25", "19:10"},
	"Lapa":          {"06:35", "07:50", "08:20", "12:50", "17:20", "18:35"},
	"Penha":         {"06:05", "07:10", "08:35", "12:10", "17:40", "19:05"},
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "путь к файлу конфигурации")
	cityName := flag.String("city", "São Paulo", "город линий")
	state := flag.String("state", "SP", "штат")
	country := flag.String("country", "Brasil", "страна")
	adminToken := flag.Duration("admin-token", 0, "выпустить токен администратора с этим сроком действия и выйти")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	zl, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer zl.Sync()

	if *adminToken > 0 {
		token, err := auth.GenerateToken(0, auth.RoleAdmin, *adminToken, []byte(cfg.Auth.AccessSecret))
		if err != nil {
			zl.Fatal("Ошибка генерации токена", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	db, err := storage.ConnectDatabase(&cfg.Database, zl)
	if err != nil {
		zl.Fatal("Ошибка подключения к базе данных", zap.Error(err))
	}
	if err := storage.Migrate(db); err != nil {
		zl.Fatal("Ошибка миграции", zap.Error(err))
	}

	ctx := context.Background()
	city := models.City{Name: *cityName, State: *state, Country: *country}
	if err := db.WithContext(ctx).Where(models.City{Name: *cityName}).FirstOrCreate(&city).Error; err != nil {
		zl.Fatal("Ошибка создания города", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	svc := service.NewScheduleService(repo, service.Options{GraceWindow: cfg.Schedule.GraceWindow}, zl)

	created, skipped := 0, 0
	for name, times := range departures {
		line, err := ensureLine(ctx, repo, name, city.ID)
		if err != nil {
			zl.Fatal("Ошибка создания линии", zap.String("line", name), zap.Error(err))
		}
		for day := models.Monday; day <= models.Friday; day++ {
			for _, dep := range times {
				_, err := svc.CreateSlot(ctx, service.SlotInput{
					LineID:        line.ID,
					DayOfWeek:     int(day),
					DepartureTime: dep,
				})
				switch {
				case err == nil:
					created++
				case errors.Is(err, service.ErrSlotExists):
					skipped++
				default:
					zl.Fatal("Ошибка создания слота",
						zap.String("line", name),
						zap.Int("day", int(day)),
						zap.String("departure", dep),
						zap.Error(err),
					)
				}
			}
		}
	}

	zl.Info("Расписание заполнено",
		zap.Int("lines", len(departures)),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
	)
}

func ensureLine(ctx context.Context, repo *repository.Repository, name string, cityID uint) (*models.Line, error) {
	line, err := repo.Line.GetByName(ctx, name)
	if err == nil {
		return line, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	line = &models.Line{Name: name, CityID: &cityID, IsActive: true, ActiveBuses: 1}
	if err := repo.Line.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}
