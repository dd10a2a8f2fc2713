package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"admob-switch/internal/admin"
	"admob-switch/internal/api"
	"admob-switch/internal/config"
	"admob-switch/internal/middleware"
	"admob-switch/internal/models"
	"admob-switch/internal/observability"
	"admob-switch/internal/push"
	"admob-switch/internal/scheduler"
	"admob-switch/internal/selector"
	"admob-switch/internal/storage"
	"admob-switch/internal/targeting"
)

func Run(cfg config.Config) {
	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("auth.jwt_secret is required")
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	store, err := storage.New(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	defer store.Close()

	if err := storage.Migrate(cfg.DSN()); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	if err := bootstrapAdmin(rootCtx, store, cfg); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin user")
	}

	// Tracing
	tracer, err := observability.InitTracing(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init tracing")
	}

	// Engines
	picker := selector.New()
	evaluator := targeting.New(store, store, targeting.WithRejectionHook(func(r targeting.Reason) {
		observability.EligibilityRejections.WithLabelValues(string(r)).Inc()
	}))

	// Push
	fcm := push.NewClient(cfg.FCM.ServerKey, cfg.FCM.Endpoint)
	if fcm == nil {
		log.Warn().Msg("fcm server key not set; push sends are no-ops")
	}

	// HTTP
	adminHandler := admin.NewHandler(store, fcm, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	publicHandler := api.NewHandler(store, picker, evaluator,
		api.WithSelectionHook(func(strategy string) {
			observability.SelectionsTotal.WithLabelValues(strategy).Inc()
		}))

	extra := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	}
	if cfg.Tracing.Enabled {
		extra = append(extra, observability.Trace(tracer))
	}
	r := api.Router(publicHandler, admin.Routes(adminHandler), extra...)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Notification lifecycle sweeps
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(store, cfg.Scheduler.Spec)
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Msg("start scheduler")
		}
	}

	// Server goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	// Wait for signal
	waitForSignal()
	log.Info().Msg("shutdown...")

	// Graceful shutdown
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel()
	if sched != nil {
		sched.Stop()
	}
	_ = srv.Shutdown(shCtx)
	_ = observability.ShutdownTracing(shCtx)
}

type adminStore interface {
	CountAdmins(ctx context.Context) (int, error)
	CreateAdmin(ctx context.Context, u models.AdminUser) (models.AdminUser, error)
}

// bootstrapAdmin seeds the first dashboard operator when the table is empty
// and a bootstrap password is configured. Subsequent admins are created
// through the API.
func bootstrapAdmin(ctx context.Context, store adminStore, cfg config.Config) error {
	count, err := store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.Auth.BootstrapPassword == "" {
		log.Warn().Msg("no admin users and no bootstrap password; admin API unusable")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.BootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = store.CreateAdmin(ctx, models.AdminUser{
		ID:           uuid.NewString(),
		Username:     cfg.Auth.BootstrapUsername,
		PasswordHash: string(hash),
		Role:         "admin",
	})
	if err != nil {
		return err
	}
	log.Info().Str("username", cfg.Auth.BootstrapUsername).Msg("bootstrap admin created")
	return nil
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
