package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/notification"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	logger.FromEnv("notification-service")

	cfg, err := config.LoadConfig(config.PathFromEnv(config.WorkerConfigFile))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := repository.InitTicketsSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("init tickets schema")
	}

	for _, topic := range []string{cfg.Kafka.BookingTopic, cfg.Kafka.DeadLetterTopic} {
		if topic == "" {
			continue
		}
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("ensure topic")
		}
	}

	opts := []notification.Option{
		notification.WithBatchSize(cfg.Worker.BatchSize),
		notification.WithDedupeByBooking(cfg.Worker.DedupeByBooking),
	}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, 0)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, ticket delivery runs without locks")
		} else {
			opts = append(opts, notification.WithTicketLock(redisCache, cfg.Worker.TicketLockTTL()))
		}
	}

	notificationService := notification.NewNotificationService(
		repository.NewTicketRepository(pool),
		email.NewSender(cfg.Mail),
		opts...,
	)

	var consumerOpts []kafka.ConsumerOption
	if cfg.Kafka.DeadLetterTopic != "" {
		deadLetter := kafka.NewProducer(cfg.Kafka.Brokers)
		defer deadLetter.Close()
		consumerOpts = append(consumerOpts, kafka.WithDeadLetter(deadLetter, cfg.Kafka.DeadLetterTopic))
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingTopic, consumerOpts...)
	defer consumer.Close()

	scheduler := notification.NewScheduler(notificationService, cfg.Worker.DeliveryInterval())

	router := api.NewRouter()
	api.NewTicketHandler(notificationService).Register(router.Group("/api/v1/tickets"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bootstrap.Run(gctx, cfg, router, "tickets.swagger.json")
	})
	g.Go(func() error {
		return consumer.Consume(gctx, notification.NewBookingConfirmedHandler(notificationService))
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Msg("notification service stopped")
}
