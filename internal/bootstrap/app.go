package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuchat/internal/app"
	"docuchat/internal/config"
	"docuchat/internal/pkg/logger"
	mysqlClient "docuchat/internal/platform/mysql"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	redisClient "docuchat/internal/platform/redis"
	"docuchat/internal/qa"
	"docuchat/internal/store"
	"docuchat/internal/worker"
)

type App struct {
	Config *config.Config
	Log    *zap.Logger

	Redis  *redisv9.Client  // set when store.driver is redis
	MySQL  *gorm.DB         // set when store.driver is mysql
	MQConn *amqp.Connection // set when the snapshot pipeline is enabled

	Store          store.Store
	SnapshotWorker *worker.SnapshotPersistWorker

	Docs     *app.DocumentService
	Sessions *app.SessionService
	Settings *app.SettingsService
	Ask      *app.AskService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(cfg.Log.File, cfg.App.Env == "prod")

	a := &App{
		Config:    cfg,
		Log:       log,
		StartedAt: time.Now(),
	}

	switch cfg.Store.Driver {
	case "redis":
		client, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Redis = client
		a.Store = store.NewRedisStore(client, cfg.Store.KeyPrefix)
	case "mysql":
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		a.MySQL = db
		gormStore, err := store.NewGormStore(db)
		if err != nil {
			return nil, err
		}
		a.Store = gormStore
	case "memory":
		a.Store = store.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	var persister app.Persister = a.Store
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		a.MQConn = conn
		a.SnapshotWorker = worker.NewSnapshotPersistWorker(conn, a.Store, cfg.RabbitMQ.SnapshotQueue, log)
		if err := a.SnapshotWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start snapshot worker failed: %w", err)
		}
		persister = rabbitmqClient.NewSnapshotPublisher(conn, cfg.RabbitMQ.SnapshotQueue)
	}

	a.Docs = app.NewDocumentService(a.Store, persister, log)
	a.Sessions = app.NewSessionService(a.Store, persister, log)
	a.Settings = app.NewSettingsService(a.Store, persister, log)

	qaClient := qa.NewClient(qa.Config{
		BaseURL: cfg.QA.BaseURL,
		Mode:    cfg.QA.Mode,
		Timeout: time.Duration(cfg.QA.TimeoutSeconds) * time.Second,
	})
	a.Ask = app.NewAskService(
		a.Docs,
		a.Sessions,
		a.Settings,
		qaClient,
		time.Duration(cfg.QA.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Cache.AnswerTTLSeconds)*time.Second,
		log,
	)

	return a, nil
}

func (a *App) Close() error {
	// Flush the session map once more so an in-flight async snapshot cannot
	// be the only copy.
	if a.Sessions != nil {
		a.Sessions.Persist(context.Background())
	}

	var closeErr error
	if a.SnapshotWorker != nil {
		a.SnapshotWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return closeErr
}
