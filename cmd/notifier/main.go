package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	notifhandler "github.com/aliskhannn/push-notifier/internal/api/handlers/notification"
	subhandler "github.com/aliskhannn/push-notifier/internal/api/handlers/subscription"
	"github.com/aliskhannn/push-notifier/internal/api/router"
	"github.com/aliskhannn/push-notifier/internal/api/server"
	"github.com/aliskhannn/push-notifier/internal/config"
	"github.com/aliskhannn/push-notifier/internal/lease"
	notifrepo "github.com/aliskhannn/push-notifier/internal/repository/notification"
	subrepo "github.com/aliskhannn/push-notifier/internal/repository/subscription"
	notifsvc "github.com/aliskhannn/push-notifier/internal/service/notification"
	subsvc "github.com/aliskhannn/push-notifier/internal/service/subscription"
	"github.com/aliskhannn/push-notifier/internal/worker"
	"github.com/aliskhannn/push-notifier/pkg/push"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	notifications := notifrepo.NewRepository(db)
	subscriptions := subrepo.NewRepository(db)

	pushClient, err := push.NewClient(push.Options{
		Subscriber:      cfg.Push.Subscriber,
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		TTL:             cfg.Push.TTL,
		Urgency:         cfg.Push.Urgency,
		Timeout:         cfg.Push.Timeout,
	}, nil)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create push client")
	}

	schedulerOpts := worker.SchedulerOptions{
		BatchSize:   cfg.Scheduler.BatchSize,
		Concurrency: cfg.Scheduler.FanoutConcurrency,
		Retry:       cfg.Retry,
	}

	closeRedis := func() error { return nil }
	if cfg.Scheduler.Lease.Enabled {
		rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database)
		closeRedis = rdb.Close

		if err = rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}

		schedulerOpts.Lease = lease.NewRedis(rdb, cfg.Scheduler.Lease.Key, cfg.Scheduler.Lease.TTL)
		zlog.Logger.Info().Str("key", cfg.Scheduler.Lease.Key).Msg("scheduler lease enabled")
	}

	scheduler := worker.NewScheduler(notifications, subscriptions, pushClient, schedulerOpts)
	sweeper := worker.NewSweeper(notifications, cfg.Sweeper.Retention)

	drivers := []*worker.Periodic{
		worker.NewPeriodic("delivery-scheduler", cfg.Scheduler.Interval, cfg.Scheduler.InitialDelay, scheduler.Tick),
		worker.NewPeriodic("retention-sweeper", cfg.Sweeper.Interval, cfg.Sweeper.InitialDelay, sweeper.Sweep),
	}

	var wg sync.WaitGroup
	for _, d := range drivers {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Run(ctx)
		}()
	}

	notifHandler := notifhandler.NewHandler(notifsvc.NewService(notifications), val, cfg)
	subHandler := subhandler.NewHandler(subsvc.NewService(subscriptions), val, cfg)

	r := router.New(notifHandler, subHandler, cfg.Server.AllowedOrigins...)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("starting server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// An in-flight tick finishes before the database goes away.
	wg.Wait()

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close master DB")
	}

	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Error().Err(err).Int("slave", i).Msg("failed to close slave DB")
		}
	}

	if err := closeRedis(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close redis")
	}
}
