package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata" // booking timezones must resolve in minimal containers

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/holidaze/internal/config"
	"github.com/iliyamo/holidaze/internal/database"
	"github.com/iliyamo/holidaze/internal/handler"
	"github.com/iliyamo/holidaze/internal/metrics"
	"github.com/iliyamo/holidaze/internal/middleware"
	"github.com/iliyamo/holidaze/internal/queue"
	"github.com/iliyamo/holidaze/internal/repository"
	"github.com/iliyamo/holidaze/internal/router"
	"github.com/iliyamo/holidaze/internal/service"
)

// redisPinger adapts the redis client to handler.Pinger.
type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Error("database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limit disabled", "addr", cfg.Redis.Addr)
	} else {
		defer rdb.Close()
	}

	metrics.Register()
	handler.SetDBTimeout(cfg.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := service.NewRabbitPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
	defer publisher.Close()
	if cfg.AMQP.ConsumerEnabled {
		consumer := &queue.Consumer{URL: cfg.AMQP.URL, Queue: cfg.AMQP.Queue, LogDir: cfg.AMQP.LogDir, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", "err", err)
			}
		}()
	}

	calc := cfg.Booking.Calculator()
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	bookings := repository.NewBookingRepo(db, calc)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				log.Error("request", append(attrs, "err", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))
	router.RegisterMiddleware(e, cfg, rdb)

	deps := map[string]handler.Pinger{"db": db}
	if rdb != nil {
		deps["redis"] = redisPinger{rdb}
	}
	router.RegisterRoutes(e, deps)

	venueH := handler.NewVenueHandler(venues, bookings, users, calc)
	bookingH := handler.NewBookingHandler(venues, bookings, users, calc, publisher)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, venueH, handler.NewAvailabilityHandler(venues, bookings, calc), middleware.NewRedisCache(cfg.Cache, rdb))
	router.RegisterCustomer(e, handler.NewProfileHandler(users, venues, bookings), bookingH, cfg.JWTSecret)
	router.RegisterManager(e, venueH, bookingH, cfg.JWTSecret)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "timezone", cfg.Booking.Timezone, "policy", calc.Policy.String())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("stopped")
}
