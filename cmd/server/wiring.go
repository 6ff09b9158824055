package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"privid/internal/engine"
	eventmetrics "privid/internal/eventlog/metrics"
	"privid/internal/eventlog/relay"
	"privid/internal/eventlog/sink"
	jwttoken "privid/internal/jwt_token"
	"privid/internal/platform/config"
	"privid/internal/platform/database"
	"privid/internal/platform/health"
	"privid/internal/platform/kafka"
	"privid/internal/platform/kafka/producer"
	"privid/internal/platform/metrics"
	"privid/internal/platform/middleware"
	"privid/internal/platform/rabbitmq"
	"privid/internal/platform/redis"
	"privid/internal/platform/tracer"
	reputationcache "privid/internal/reputation/cache"
	reputationmodels "privid/internal/reputation/models"
	"privid/internal/seeder"
	httptransport "privid/internal/transport/http"
	"privid/internal/verification/proofcheck"
	"privid/internal/verification/sweeper"
	id "privid/pkg/domain"
	"privid/pkg/payload"
)

// application holds everything main starts and stops.
type application struct {
	router  http.Handler
	backend string

	db      *database.Pool
	redis   *redis.Client
	kafka   *producer.Producer
	amqp    *rabbitmq.Publisher
	relay   *relay.Worker
	sweeper *sweeper.Worker
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *application, err error) {
	app := &application{backend: "memory"}
	defer func() {
		if err != nil {
			app.close(log)
		}
	}()

	admin, err := id.ParsePrincipal(cfg.AdminAddress)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_ADDRESS: %w", err)
	}
	checker, err := proofcheck.New(cfg.Verification.ProofFormat)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithMetrics(),
		engine.WithProofChecker(checker),
		engine.WithReputationPolicy(reputationmodels.Policy{
			OwnerVerified:    cfg.Reputation.OwnerVerifiedDelta,
			OwnerRejected:    cfg.Reputation.OwnerRejectedDelta,
			VerifierResolved: cfg.Reputation.VerifierResolvedDelta,
		}),
	}
	if cfg.Tracing {
		opts = append(opts, engine.WithTracer(tracer.NewOTel()))
	}

	healthHandler := health.New(cfg.Environment)

	if app.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if app.redis != nil {
		opts = append(opts, engine.WithReputationCache(reputationcache.NewRedisCache(app.redis.Client, cfg.Redis.ReputationTTL)))
		healthHandler.RegisterCheck("redis", app.redis.Health)
	}

	var e *engine.Engine
	if app.db, err = database.New(cfg.Database); err != nil {
		return nil, err
	}
	if app.db != nil {
		app.backend = "postgres"
		if err := database.Migrate(ctx, app.db.DB()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		healthHandler.RegisterCheck("postgres", app.db.Health)
		e, err = engine.NewPostgres(app.db.DB(), admin, opts...)
	} else {
		e, err = engine.NewInMemory(admin, opts...)
	}
	if err != nil {
		return nil, err
	}
	if cfg.SeedDemo {
		if err := seedDemo(ctx, cfg, e, log); err != nil {
			return nil, err
		}
	}

	sinks, err := app.buildSinks(cfg, log, healthHandler)
	if err != nil {
		return nil, err
	}
	if len(sinks) > 0 {
		app.relay = relay.New(e.EventStore(), sinks,
			relay.WithBatchSize(cfg.Events.RelayBatch),
			relay.WithPollInterval(cfg.Events.RelayInterval),
			relay.WithCircuit(cfg.Events.SinkFailureThreshold, cfg.Events.SinkCooldown),
			relay.WithGapGrace(cfg.Events.GapGrace),
			relay.WithMetrics(eventmetrics.New()),
			relay.WithLogger(log),
		)
	}
	if cfg.Verification.PendingTTL > 0 {
		app.sweeper = sweeper.New(e.Verifications, cfg.Verification.PendingTTL,
			sweeper.WithInterval(cfg.Verification.SweepInterval),
			sweeper.WithLogger(log),
		)
	}

	tokens := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	tokens.SetEnv(cfg.Environment)

	app.router = httptransport.NewRouter(httptransport.Deps{
		Engine:         e,
		Tokens:         jwttoken.NewJWTServiceAdapter(tokens),
		Health:         healthHandler,
		Metrics:        metrics.New(),
		TrustedProxies: middleware.NewTrustedProxies(cfg.TrustedProxies),
		Logger:         log,
		Traced:         cfg.Tracing,
	})
	return app, nil
}

func (app *application) buildSinks(cfg config.Server, log *slog.Logger, h *health.Handler) ([]relay.Sink, error) {
	switch cfg.Events.Sink {
	case config.SinkKafka:
		pc, err := kafka.ProducerConfigFor(cfg.Events.Kafka)
		if err != nil {
			return nil, err
		}
		p, err := producer.New(pc, log)
		if err != nil {
			return nil, err
		}
		app.kafka = p
		h.RegisterCheck("kafka", kafka.NewHealthChecker(cfg.Events.Kafka.Brokers).Check)
		return []relay.Sink{sink.NewKafka(p, cfg.Events.Kafka.Topic)}, nil
	case config.SinkRabbitMQ:
		p, err := rabbitmq.Dial(cfg.Events.AMQP.URL, cfg.Events.AMQP.Exchange, cfg.Events.AMQP.RoutingKey)
		if err != nil {
			return nil, err
		}
		app.amqp = p
		h.RegisterCheck("rabbitmq", p.Healthy)
		return []relay.Sink{sink.NewRabbitMQ(p)}, nil
	default:
		return nil, nil
	}
}

func (app *application) startWorkers() {
	if app.relay != nil {
		app.relay.Start()
	}
	if app.sweeper != nil {
		app.sweeper.Start()
	}
}

func (app *application) stopWorkers(ctx context.Context, log *slog.Logger) {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.relay != nil {
		if err := app.relay.Stop(ctx); err != nil {
			log.Warn("event relay did not drain", "error", err)
		}
	}
}

func (app *application) close(log *slog.Logger) {
	type closer struct {
		name string
		fn   func() error
	}
	var closers []closer
	if app.kafka != nil {
		closers = append(closers, closer{"kafka", app.kafka.Close})
	}
	if app.amqp != nil {
		closers = append(closers, closer{"rabbitmq", app.amqp.Close})
	}
	if app.redis != nil {
		closers = append(closers, closer{"redis", app.redis.Close})
	}
	if app.db != nil {
		closers = append(closers, closer{"postgres", app.db.Close})
	}
	for _, c := range closers {
		if err := c.fn(); err != nil {
			log.Warn("failed to close dependency", "dependency", c.name, "error", err)
		}
	}
}

// seedDemo fills an in-memory engine with demo data. Groth16 input proofs
// cannot be fabricated, so that format seeds verifiers and credentials only.
func seedDemo(ctx context.Context, cfg config.Server, e *engine.Engine, log *slog.Logger) error {
	var opts []seeder.Option
	if cfg.Verification.ProofFormat == config.ProofFormatOpaque {
		opts = append(opts, seeder.WithInputProof(payload.Opaque(strings.Repeat("\x01", proofcheck.MinOpaqueBytes))))
	}
	s := seeder.New(e.Credentials, e.Verifiers, e.Verifications, e.Proofs, log, opts...)
	if _, err := s.SeedAll(ctx); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	return nil
}
