package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"jobboard/internal/application/adapters"
	"jobboard/internal/application/eligibility"
	applicationhandler "jobboard/internal/application/handler"
	"jobboard/internal/application/lock"
	applicationservice "jobboard/internal/application/service"
	applicationstore "jobboard/internal/application/store"
	authhandler "jobboard/internal/auth/handler"
	"jobboard/internal/auth/password"
	authservice "jobboard/internal/auth/service"
	userstore "jobboard/internal/auth/store/user"
	"jobboard/internal/blob"
	"jobboard/internal/featureflags"
	httpapi "jobboard/internal/http"
	jobrolehandler "jobboard/internal/jobrole/handler"
	jobroleservice "jobboard/internal/jobrole/service"
	jobrolestore "jobboard/internal/jobrole/store"
	jwttoken "jobboard/internal/jwt_token"
	"jobboard/internal/platform/config"
	"jobboard/internal/platform/kafka"
	"jobboard/internal/platform/metrics"
	"jobboard/internal/platform/postgres"
	platformredis "jobboard/internal/platform/redis"
	"jobboard/pkg/domain"
	audit "jobboard/pkg/platform/audit"
	"jobboard/pkg/platform/audit/publisher"
	kafkastore "jobboard/pkg/platform/audit/store/kafka"
	auditmemory "jobboard/pkg/platform/audit/store/memory"
	auditpostgres "jobboard/pkg/platform/audit/store/postgres"
	"jobboard/pkg/platform/circuit"
	"jobboard/pkg/platform/middleware/auth"
)

const auditBufferSize = 1024

type app struct {
	router  http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type applicationStore interface {
	applicationservice.Store
	eligibility.ApplicationLookup
	jobroleservice.ApplicationCounter
}

// build picks a backend for each concern from cfg: Postgres or memory stores,
// Redis or in-process locking, S3 or memory blobs, Kafka or a local audit sink.
func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)
	checks := map[string]httpapi.HealthChecker{}

	var (
		users        authservice.UserStore
		jobRoles     jobroleservice.Store
		applications applicationStore
		db           *sql.DB
	)
	if cfg.Database.URL != "" {
		pg, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = pg.Close() })
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		checks["postgres"] = pg
		db = pg.DB
		users = userstore.NewPostgres(db)
		jobRoles = jobrolestore.NewPostgres(db)
		applications = applicationstore.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users = userstore.New()
		jobRoles = jobrolestore.NewSeededInMemory()
		applications = applicationstore.NewInMemory()
	}

	auditPublisher, err := buildAudit(ctx, cfg.Kafka, db, log, a)
	if err != nil {
		return nil, err
	}

	locker, err := buildLocker(ctx, cfg.Redis, log, m, checks, a)
	if err != nil {
		return nil, err
	}

	blobs, err := buildBlobStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	jwtService, err := jwttoken.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	requireAuth := auth.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), log)
	requireAdmin := auth.RequireRoles(log, domain.RoleAdmin)

	authSvc, err := authservice.New(users, password.New(cfg.Auth.BcryptCost), jwtService,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPublisher),
		authservice.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.AdminEmail != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return nil, fmt.Errorf("ensure admin account: %w", err)
		}
	}

	jobRoleSvc, err := jobroleservice.New(jobRoles,
		jobroleservice.WithLogger(log),
		jobroleservice.WithAuditPublisher(auditPublisher),
		jobroleservice.WithApplicationCounter(applications),
	)
	if err != nil {
		return nil, err
	}

	evaluator := eligibility.New(applications, adapters.NewJobRoleAdapter(jobRoles))
	applicationSvc, err := applicationservice.New(applications, evaluator, adapters.NewUserAdapter(users), blobs,
		applicationservice.WithLogger(log),
		applicationservice.WithAuditPublisher(auditPublisher),
		applicationservice.WithMetrics(m),
		applicationservice.WithLocker(locker),
		applicationservice.WithOrphanCleanup(cfg.Apply.CleanupOrphans),
	)
	if err != nil {
		return nil, err
	}

	a.router = httpapi.NewRouter(httpapi.Deps{
		Logger:     log,
		Metrics:    m,
		Gatherer:   registry,
		CORSOrigin: cfg.CORSOrigin,
		Checks:     checks,
		Handlers: []httpapi.Registrar{
			authhandler.New(authSvc, log, requireAuth),
			jobrolehandler.New(jobRoleSvc, log, requireAuth, requireAdmin),
			applicationhandler.New(applicationSvc, log, cfg.Apply.MaxCVBytes, requireAuth, requireAdmin),
			featureflags.New(cfg.Flags, log),
		},
	})
	ok = true
	return a, nil
}

// buildAudit prefers Kafka, then the audit_events table, then memory. The
// publisher is always async so a slow sink never delays a request.
func buildAudit(ctx context.Context, cfg config.KafkaConfig, db *sql.DB, log *slog.Logger, a *app) (*publisher.Publisher, error) {
	var sink audit.Appender
	switch {
	case len(cfg.Brokers) > 0:
		client, err := kafka.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		if err := kafka.EnsureTopic(ctx, client, cfg.AuditTopic); err != nil {
			return nil, err
		}
		sink = kafkastore.New(client, cfg.AuditTopic)
		log.Info("audit events published to kafka", "topic", cfg.AuditTopic)
	case db != nil:
		sink = auditpostgres.New(db)
	default:
		sink = auditmemory.NewInMemoryStore()
	}
	pub := publisher.NewPublisher(sink, publisher.WithAsyncBuffer(auditBufferSize), publisher.WithLogger(log))
	a.closers = append(a.closers, pub.Close)
	return pub, nil
}

// buildLocker returns the in-process keyed mutex, wrapped with a Redis lock
// behind a circuit breaker when Redis is configured.
func buildLocker(ctx context.Context, cfg config.RedisConfig, log *slog.Logger, m *metrics.Metrics, checks map[string]httpapi.HealthChecker, a *app) (lock.Locker, error) {
	local := lock.NewKeyedMutex()
	client, err := platformredis.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return local, nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	checks["redis"] = client
	breaker := circuit.New("redis-lock")
	return lock.NewResilient(local, lock.NewRedisLocker(client), breaker, log, m), nil
}

func buildBlobStore(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (applicationservice.BlobStore, error) {
	if cfg.Bucket == "" {
		log.Warn("S3_BUCKET_NAME not set, keeping CVs in memory")
		return blob.NewMemoryStore(), nil
	}
	client, err := blob.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := blob.NewS3Store(client, cfg)
	if err != nil {
		return nil, fmt.Errorf("configure s3 blob store: %w", err)
	}
	return store, nil
}
