package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "busline/docs"
	"busline/internal/config"
	"busline/internal/handlers"
	"busline/internal/logger"
	"busline/internal/metrics"
	"busline/internal/publisher"
	"busline/internal/repository"
	"busline/internal/router"
	"busline/internal/service"
	"busline/internal/storage"
	"busline/internal/tasks"
	"busline/internal/ws"
)

// @Title						Расписание автобусных линий и интерес пассажиров
// @Version					1.0
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	config.LoadEnv()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zl, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Сервис остановлен с ошибкой", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return fmt.Errorf("часовой пояс расписания: %w", err)
	}

	db, err := storage.ConnectDatabase(&cfg.Database, zl)
	if err != nil {
		return err
	}
	if err := storage.Migrate(db); err != nil {
		return err
	}

	collector := metrics.NewCollector()

	opts := service.Options{
		GraceWindow:    cfg.Schedule.GraceWindow,
		Location:       loc,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		Metrics:        collector,
	}

	// Без Redis сервис работает, но повторные запросы с одним ключом не отсекаются.
	if cfg.Redis.Addr != "" {
		rdb, err := storage.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			zl.Warn("Redis недоступен, идемпотентность отключена", zap.Error(err))
		} else {
			defer rdb.Close()
			opts.Deduper = storage.NewRedisDeduper(rdb)
		}
	}

	hub := ws.NewHub(zl)
	go hub.Run(ctx)
	notifiers := service.Notifiers{hub}

	if cfg.NATS.URL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, collector, zl)
		if err != nil {
			zl.Warn("NATS недоступен, публикация событий отключена", zap.Error(err))
		} else {
			defer pub.Close()
			notifiers = append(notifiers, pub)
		}
	}
	opts.Notifier = notifiers

	svc := service.NewScheduleService(repository.NewRepository(db), opts, zl)

	scheduler, err := tasks.InitScheduler(cfg.Schedule.ResetCron, svc, zl)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	engine := router.Setup(router.Deps{
		Config:   cfg,
		Schedule: handlers.NewScheduleHandler(svc),
		Hub:      hub,
		Metrics:  collector.Handler(),
		Logger:   zl,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("Сервер запущен", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
	case <-ctx.Done():
	}

	zl.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	return nil
}
