package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/clients"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	logger.FromEnv("booking-service")

	cfg, err := config.LoadConfig(config.PathFromEnv(config.AppConfigFile))
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

	if err := repository.InitBookingsSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("init bookings schema")
	}

	if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.BookingTopic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
		log.Warn().Err(err).Str("topic", cfg.Kafka.BookingTopic).Msg("ensure booking topic")
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	var pricingCache flights.PricingCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.PricingCacheTTL)*time.Second)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, flight quotes will not be cached")
		}
		pricingCache = redisCache
	}

	pricingService := flights.NewPricingService(
		clients.NewFlightsClient(cfg.Services.FlightsURL, cfg.Services.Timeout()),
		pricingCache,
	)

	var opts []booking.BookingServiceOption
	if cfg.Services.UsersURL != "" {
		opts = append(opts, booking.WithUserLookup(clients.NewUsersClient(cfg.Services.UsersURL, cfg.Services.Timeout())))
	}
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		pricingService,
		producer,
		cfg.Kafka.BookingTopic,
		opts...,
	)

	router := api.NewRouter()
	api.NewBookingHandler(bookingService).Register(router.Group("/api/v1/bookings"))
	api.NewFlightHandler(pricingService).Register(router.Group("/api/v1/flights"))

	if err := bootstrap.Run(ctx, cfg, router, "bookings.swagger.json"); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("booking service stopped")
}
