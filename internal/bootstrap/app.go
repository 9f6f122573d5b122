package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"threads-accounts/internal/cache"
	"threads-accounts/internal/config"
	"threads-accounts/internal/logging"
	"threads-accounts/internal/metrics"
	mongoClient "threads-accounts/internal/platform/mongo"
	rabbitmqClient "threads-accounts/internal/platform/rabbitmq"
	redisClient "threads-accounts/internal/platform/redis"
	"threads-accounts/internal/repository"
	"threads-accounts/internal/worker"
)

type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	Mongo    *mongo.Client
	Users    *repository.UserRepository
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	FollowWorker *worker.FollowEventWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logging.New(cfg.Log)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	app := &App{
		Config:    cfg,
		Log:       log,
		Registry:  registry,
		Metrics:   m,
		StartedAt: time.Now(),
	}

	mongoCli, err := mongoClient.New(ctx, cfg.Mongo.URI, cfg.MongoTimeout())
	if err != nil {
		return nil, err
	}
	app.Mongo = mongoCli

	users := repository.NewUserRepository(
		mongoCli,
		mongoCli.Database(cfg.Mongo.Database).Collection(cfg.Mongo.UsersCollection),
		cfg.Mongo.Transactions,
	)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Users = users

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Redis = redisCli

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.FollowEventQueue)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.MQConn = mqConn

	profiles := cache.NewProfileCache(redisCli, cfg.ProfileTTL())
	followWorker := worker.NewFollowEventWorker(mqConn, profiles, m, log, cfg.RabbitMQ.FollowEventQueue)
	if err := followWorker.Start(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("start follow event worker failed: %w", err)
	}
	app.FollowWorker = followWorker

	log.WithFields(logrus.Fields{
		"mongo_db":     cfg.Mongo.Database,
		"transactions": cfg.Mongo.Transactions,
		"queue":        cfg.RabbitMQ.FollowEventQueue,
	}).Info("dependencies ready")
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.FollowWorker != nil {
		a.FollowWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}
