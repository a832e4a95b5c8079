// Package app wires configuration into a running set of stores, services
// and handlers. Both the server binary and the end-to-end tests build
// through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	attendancehandler "rollcall/internal/attendance/handler"
	attendancemetrics "rollcall/internal/attendance/metrics"
	attendanceservice "rollcall/internal/attendance/service"
	attendancestore "rollcall/internal/attendance/store/attendance"
	pairingstore "rollcall/internal/attendance/store/pairing"
	auditservice "rollcall/internal/audit"
	audithandler "rollcall/internal/audit/handler"
	directorycache "rollcall/internal/directory/cache"
	directoryhandler "rollcall/internal/directory/handler"
	directoryservice "rollcall/internal/directory/service"
	directorystore "rollcall/internal/directory/store"
	jwttoken "rollcall/internal/jwt_token"
	"rollcall/internal/platform/config"
	"rollcall/internal/platform/database"
	"rollcall/internal/platform/metrics"
	redisclient "rollcall/internal/platform/redis"
	httptransport "rollcall/internal/transport/http"
	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/platform/audit/publisher"
	"rollcall/pkg/platform/audit/publishers/stream"
	auditmemory "rollcall/pkg/platform/audit/store/memory"
	sqlstore "rollcall/pkg/platform/audit/store/sql"
	"rollcall/pkg/platform/circuit"
)

// App owns every long-lived resource behind the HTTP handler.
type App struct {
	Handler   http.Handler
	Metrics   *metrics.Metrics
	Audit     *publisher.Publisher
	Directory *directoryservice.Service
	Registry  *attendanceservice.Registry
	Detector  *attendanceservice.Detector

	logger *slog.Logger
	db     *database.DB
	redis  *redisclient.Client
	kafka  *kgo.Client
	stream *stream.Sink
}

type storeSet struct {
	attendance attendanceservice.AttendanceStore
	pairings   attendanceservice.PairingStore
	identities directoryservice.Store
	audit      audit.Store
}

// Build opens the configured engine, runs migrations, seeds the directory
// and assembles the router. On error everything already opened is closed.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger) (_ *App, err error) {
	a := &App{logger: logger, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	stores, err := a.openStores(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if a.redis, err = redisclient.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if a.redis != nil {
		stores.identities = directorycache.New(stores.identities, a.redis.Client, cfg.Redis.CacheTTL, logger)
	}

	var sinks []audit.Sink
	if cfg.KafkaEnabled() {
		if a.kafka, err = stream.NewClient(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic); err != nil {
			return nil, err
		}
		if err = stream.EnsureTopic(ctx, a.kafka, cfg.Kafka.AuditTopic, 3, 1); err != nil {
			return nil, err
		}
		a.stream = stream.New(a.kafka, cfg.Kafka.AuditTopic, stream.WithLogger(logger))
		sinks = append(sinks, a.stream)
	}

	reg := a.Metrics.Registry()
	a.Audit = publisher.New(stores.audit,
		publisher.WithBufferSize(cfg.Audit.BufferSize),
		publisher.WithWriteTimeout(cfg.Audit.WriteTimeout),
		publisher.WithPageSize(cfg.Audit.PageSize),
		publisher.WithSinks(sinks...),
		publisher.WithBreaker(circuit.New("audit_store")),
		publisher.WithLogger(logger),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
	)

	a.Directory = directoryservice.New(stores.identities, a.Audit, cfg.EmailDomain, logger)
	if cfg.SeedDefaultStudent {
		if err = a.Directory.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed directory: %w", err)
		}
	}

	opts := []attendanceservice.Option{
		attendanceservice.WithLogger(logger),
		attendanceservice.WithMetrics(attendancemetrics.New(reg)),
	}
	a.Detector = attendanceservice.NewDetector(stores.attendance, stores.pairings, a.Audit, opts...)
	a.Registry = attendanceservice.NewRegistry(stores.attendance, a.Detector, a.Audit, opts...)

	attendanceHandler := attendancehandler.New(a.Registry, a.Detector, logger)
	auditHandler := audithandler.New(auditservice.NewService(a.Audit), logger)

	deps := httptransport.Deps{
		Logger:             logger,
		Metrics:            a.Metrics,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Public: []httptransport.RouteRegistrar{
			directoryhandler.New(a.Directory, logger),
			attendanceHandler,
			auditHandler,
		},
		Admin:  []httptransport.AdminRouteRegistrar{attendanceHandler},
		Health: a.healthChecks(),
	}
	if cfg.AdminJWTSecret != "" {
		jwtService := jwttoken.NewJWTService(cfg.AdminJWTSecret, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
		deps.AdminValidator = jwttoken.NewJWTServiceAdapter(jwtService)
	} else {
		logger.WarnContext(ctx, "ADMIN_JWT_SECRET not set, admin routes are unguarded")
	}
	a.Handler = httptransport.NewRouter(deps)

	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg config.DatabaseConfig) (storeSet, error) {
	driver := strings.ToLower(cfg.Driver)
	if driver == config.DriverMemory {
		a.logger.WarnContext(ctx, "using in-memory storage, data is lost on exit")
		return storeSet{
			attendance: attendancestore.NewInMemoryStore(),
			pairings:   pairingstore.NewInMemoryStore(),
			identities: directorystore.NewInMemoryStore(),
			audit:      auditmemory.NewInMemoryStore(),
		}, nil
	}

	db, err := database.Open(ctx, driver, cfg.URL)
	if err != nil {
		return storeSet{}, err
	}
	a.db = db
	return storeSet{
		attendance: attendancestore.NewSQLStore(db),
		pairings:   pairingstore.NewSQLStore(db),
		identities: directorystore.NewSQLStore(db),
		audit:      sqlstore.New(db),
	}, nil
}

func (a *App) healthChecks() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if a.db != nil {
		checks["database"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.kafka != nil {
		checks["kafka"] = a.kafka.Ping
	}
	return checks
}

// Close drains the audit queue into the store and the stream, then releases
// connections. It is safe to call on a partially built App.
func (a *App) Close() error {
	if a.Audit != nil {
		a.Audit.Close()
	}
	if a.stream != nil {
		a.stream.Close()
	}
	if a.kafka != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.kafka.Flush(ctx); err != nil {
			a.logger.Warn("kafka flush on close failed", "error", err)
		}
		a.kafka.Close()
	}
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
