// Package scheduler собирает фоновый процесс: сверку премиум-доступа
// и напоминания об окончании пробного периода.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/app-despesas/internal/cache"
	"github.com/magabrotheeeer/app-despesas/internal/config"
	"github.com/magabrotheeeer/app-despesas/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/services/entitlement"
	schedulerservice "github.com/magabrotheeeer/app-despesas/internal/services/scheduler"
	"github.com/magabrotheeeer/app-despesas/internal/services/trial"
	"github.com/magabrotheeeer/app-despesas/internal/storage"
)

const (
	dbAttempts   = 10
	dbRetryDelay = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	cfg              config.Scheduler
	conn             *amqp.Connection
	ch               *amqp.Channel
	db               *storage.Storage
	cache            *cache.Cache
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *storage.Storage) error {
	var err error
	for i := 0; i < dbAttempts; i++ {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbRetryDelay):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(ctx, cfg.DatabaseURL)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	entitlements := entitlement.NewService(db, cacheRedis, cfg.Entitlement.StatsCacheTTL, logger)
	trials := trial.NewService(db, cfg.Trial.Duration.Std(), cfg.Trial.ReminderDays, logger)

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(entitlements, trials, cacheRedis, rabbitmq.NewPublisher(ch), logger),
		cfg:              cfg.Scheduler,
		conn:             conn,
		ch:               ch,
		db:               db,
		cache:            cacheRedis,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает задачи и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	go a.schedulerService.RunSweeper(ctx, a.cfg.SweepInterval)
	go a.schedulerService.RunReminders(ctx, a.cfg.ReminderInterval)

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")

	closeResources(a.ch, a.conn, a.logger)
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
