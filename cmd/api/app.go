package main

import (
	"context"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/facility-api/internal/config"
	appointmentHandler "github.com/jwalitptl/facility-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/facility-api/internal/handler/auth"
	facilityHandler "github.com/jwalitptl/facility-api/internal/handler/facility"
	"github.com/jwalitptl/facility-api/internal/handler/health"
	notificationHandler "github.com/jwalitptl/facility-api/internal/handler/notification"
	patientHandler "github.com/jwalitptl/facility-api/internal/handler/patient"
	"github.com/jwalitptl/facility-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/facility-api/internal/handler/user"
	"github.com/jwalitptl/facility-api/internal/middleware"
	"github.com/jwalitptl/facility-api/internal/repository/memory"
	"github.com/jwalitptl/facility-api/internal/router"
	"github.com/jwalitptl/facility-api/internal/service/access"
	appointmentService "github.com/jwalitptl/facility-api/internal/service/appointment"
	authService "github.com/jwalitptl/facility-api/internal/service/auth"
	facilityService "github.com/jwalitptl/facility-api/internal/service/facility"
	"github.com/jwalitptl/facility-api/internal/service/notification"
	patientService "github.com/jwalitptl/facility-api/internal/service/patient"
	recordService "github.com/jwalitptl/facility-api/internal/service/record"
	userService "github.com/jwalitptl/facility-api/internal/service/user"
	"github.com/jwalitptl/facility-api/internal/worker"
	"github.com/jwalitptl/facility-api/pkg/apiclient"
	pkgauth "github.com/jwalitptl/facility-api/pkg/auth"
	"github.com/jwalitptl/facility-api/pkg/circuitbreaker"
	"github.com/jwalitptl/facility-api/pkg/idgen"
	"github.com/jwalitptl/facility-api/pkg/logger"
	"github.com/jwalitptl/facility-api/pkg/messaging"
	redisBroker "github.com/jwalitptl/facility-api/pkg/messaging/redis"
	"github.com/jwalitptl/facility-api/pkg/metrics"
	"github.com/jwalitptl/facility-api/pkg/security"
	"github.com/jwalitptl/facility-api/pkg/validator"
)

// app holds the wired server and whatever must be released on exit.
type app struct {
	router  *router.Router
	redis   *goredis.Client
	broker  messaging.Broker
	cleanup *worker.NotificationCleanupWorker
}

func (a *app) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close broker")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	lg := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = *lg.Zerolog()

	if err := validator.RegisterWithGin(); err != nil {
		return nil, err
	}

	a := &app{}
	checks := map[string]health.Check{}

	if cfg.UsesRedis() {
		client, err := redisBroker.NewClient(ctx, redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return nil, err
		}
		a.redis = client
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	// Metrics
	promH := prometheus.New(cfg.Metrics.Namespace)
	m := metrics.New(cfg.Metrics.Namespace, promH.Registry())

	// Store
	store, err := memory.NewSeeded(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}
	checks["store"] = func(context.Context) error { return store.CheckInvariants() }

	// Notification feed
	broker := messaging.NewNopBroker()
	if cfg.Redis.PublishNotifications && a.redis != nil {
		broker = redisBroker.NewBrokerWithClient(a.redis, lg.Zerolog())
		a.broker = broker
	}
	feed := notification.NewFeed(broker, m, lg.With("component", "notifications"))
	if cfg.Seed.Notifications {
		feed.Seed()
	}
	if cfg.Notifications.Retention > 0 {
		a.cleanup = worker.NewNotificationCleanupWorker(feed, cfg.Notifications.Retention, cfg.Notifications.CleanupInterval, lg.With("component", "notification-cleanup"))
	}

	// Auth
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = idgen.Random(48)
		log.Warn().Msg("auth.jwt_secret is not set; using a random secret, sessions will not survive a restart")
	}
	tokens, err := pkgauth.NewJWTManager(secret, cfg.Auth.SessionTTL, cfg.Auth.Issuer)
	if err != nil {
		a.Close()
		return nil, err
	}

	var sessions authService.SessionStorage
	switch cfg.Auth.SessionStore {
	case "redis":
		sessions = authService.NewRedisStorage(a.redis)
	default:
		sessions = authService.NewCacheStorage(cfg.Auth.SessionTTL, 10*time.Minute)
	}

	local := authService.NewLocalAuth(
		store,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		authService.DemoAccounts(memory.DemoStaff(), authService.DemoStaffPassword),
		authService.DemoAccounts(memory.DemoPatientUsers(), authService.DemoPatientPassword),
	)
	opts := []authService.Option{
		authService.WithMetrics(m),
		authService.WithLogger(lg.With("component", "auth")),
		authService.WithSessionTTL(cfg.Auth.SessionTTL),
	}
	if cfg.Remote.Enabled {
		breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "remote-auth",
			MaxFailures: cfg.Remote.MaxFailures,
			Timeout:     cfg.Remote.BreakerTimeout,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				log.Warn().Str("breaker", name).Str("from", string(from)).Str("to", string(to)).Msg("circuit breaker state changed")
			},
		})
		client := apiclient.New(cfg.APIClient())
		opts = append(opts, authService.WithRemote(authService.NewRemoteAuth(client, breaker)))
		log.Info().Str("base_url", client.BaseURL()).Msg("remote authenticator enabled")
	}
	authSvc := authService.NewService(local, store, sessions, tokens, opts...)

	// Services
	ids := idgen.NewGenerator(nil)
	patientSvc := patientService.NewService(store, authSvc, feed, m, lg.With("component", "patients"))
	appointmentSvc := appointmentService.NewService(store, feed, m, lg.With("component", "appointments"), ids)
	userSvc := userService.NewService(store, authSvc, feed, lg.With("component", "users"), ids)
	facilitySvc := facilityService.NewService(store, lg.With("component", "facility"))
	recordSvc := recordService.NewService(store, feed, lg.With("component", "records"), ids)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	handlers := router.Handlers{
		Auth:          authHandler.NewHandler(authSvc),
		Health:        health.NewHandler(checks),
		Metrics:       promH,
		Users:         userHandler.NewHandler(userSvc, authSvc, authMiddleware.RequireCapability(access.ManageUsers, access.ViewUsers)),
		Patients:      patientHandler.NewHandler(patientSvc, recordSvc),
		Appointments:  appointmentHandler.NewHandler(appointmentSvc),
		Facility:      facilityHandler.NewHandler(facilitySvc),
		Notifications: notificationHandler.NewHandler(feed),
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}

	r := router.NewRouter(authMiddleware, handlers, router.RouterConfig{
		Mode:       cfg.Server.Mode,
		RateLimit:  rate.Limit(cfg.RateLimit.RPS),
		RateBurst:  cfg.RateLimit.Burst,
		CORSConfig: corsConfig,
	})
	r.Setup()
	a.router = r
	return a, nil
}
