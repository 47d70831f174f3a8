package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/twmb/franz-go/pkg/kgo"

	"cardeval/internal/admin"
	"cardeval/internal/application"
	appstore "cardeval/internal/application/store"
	"cardeval/internal/fraud"
	fraudmetrics "cardeval/internal/fraud/metrics"
	"cardeval/internal/fraud/watchlist"
	"cardeval/internal/platform/config"
	kafkaclient "cardeval/internal/platform/kafka"
	"cardeval/internal/platform/postgres"
	redisclient "cardeval/internal/platform/redis"
	"cardeval/internal/ratelimit"
	ratemetrics "cardeval/internal/ratelimit/metrics"
	ratemw "cardeval/internal/ratelimit/middleware"
	ratestore "cardeval/internal/ratelimit/store"
	httptransport "cardeval/internal/transport/http"
	"cardeval/internal/validator"
	"cardeval/internal/validator/license"
	valmetrics "cardeval/internal/validator/metrics"
	valstore "cardeval/internal/validator/store"
	audit "cardeval/pkg/platform/audit"
	"cardeval/pkg/platform/audit/consumer"
	"cardeval/pkg/platform/audit/publisher"
	kafkastore "cardeval/pkg/platform/audit/store/kafka"
	"cardeval/pkg/platform/audit/store/memory"
	pgaudit "cardeval/pkg/platform/audit/store/postgres"
	"cardeval/pkg/platform/circuit"
)

// infra holds the optional backing services. A nil field means the
// in-memory implementation is used instead.
type infra struct {
	db       *sql.DB
	txRunner *postgres.TxRunner
	redis    *redisclient.Client
	kafka    *kgo.Client
	consumer *kgo.Client
	log      *slog.Logger
}

func connectInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{log: log}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if db != nil {
		in.db = db
		in.txRunner = postgres.NewTxRunner(db)
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				in.Close()
				return nil, err
			}
		}
		log.Info("postgres connected")
	} else {
		log.Info("DATABASE_URL not set, using in-memory stores")
	}

	redis, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	if redis != nil {
		in.redis = redis
		log.Info("redis connected")
	}

	client, err := kafkaclient.New(ctx, cfg.Kafka)
	if err != nil {
		in.Close()
		return nil, err
	}
	if client != nil {
		in.kafka = client
		if err := kafkastore.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, -1); err != nil {
			in.Close()
			return nil, err
		}
		log.Info("kafka connected", "audit_topic", cfg.Kafka.AuditTopic)
	}

	if in.db != nil {
		group, err := kafkaclient.NewConsumer(ctx, cfg.Kafka)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.consumer = group
	}

	return in, nil
}

func (in *infra) Close() {
	if in.consumer != nil {
		in.consumer.Close()
	}
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Warn("failed to close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.log.Warn("failed to close postgres", "error", err)
		}
	}
}

func (in *infra) readyChecks() map[string]httptransport.CheckFunc {
	checks := make(map[string]httptransport.CheckFunc)
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Ping
	}
	return checks
}

type auditWiring struct {
	publisher *publisher.Publisher
	consumer  *consumer.Consumer

	// lister is nil when the sink cannot be read back.
	lister admin.AuditLister
}

// buildAudit picks the audit sink: Kafka when brokers are configured, else
// the Postgres table inside the evaluation transaction, else memory. With
// Kafka, Postgres and a consumer group, a materializer copies compliance and
// security events from the topic into Postgres.
func buildAudit(ctx context.Context, cfg config.Config, in *infra, log *slog.Logger) (*auditWiring, error) {
	switch {
	case in.kafka != nil:
		var opts []publisher.Option
		opts = append(opts, publisher.WithLogger(log))
		if cfg.Server.AuditBufferSize > 0 {
			opts = append(opts, publisher.WithAsyncBuffer(cfg.Server.AuditBufferSize))
		}
		w := &auditWiring{
			publisher: publisher.NewPublisher(kafkastore.New(in.kafka, cfg.Kafka.AuditTopic), opts...),
		}
		if in.db != nil {
			pg := pgaudit.New(in.db)
			w.lister = pg
			if in.consumer != nil {
				router := consumer.NewRouter(log, nil)
				router.Register(audit.CategoryCompliance, pg)
				router.Register(audit.CategorySecurity, pg)
				w.consumer = consumer.New(in.consumer, router, consumer.WithLogger(log))
				log.Info("audit materializer enabled", "group", cfg.Kafka.ConsumerGroup)
			}
		}
		return w, nil

	case in.db != nil:
		pg := pgaudit.New(in.db)
		return &auditWiring{
			publisher: publisher.NewPublisher(pg, publisher.WithLogger(log)),
			lister:    pg,
		}, nil

	default:
		mem := memory.NewInMemoryStore()
		return &auditWiring{
			publisher: publisher.NewPublisher(mem, publisher.WithLogger(log)),
			lister:    mem,
		}, nil
	}
}

// loadLicense returns a holder seeded from path. A missing or unreadable
// license leaves the holder empty; the watcher may fill it later.
func loadLicense(path string, log *slog.Logger) *license.Holder {
	if path == "" {
		log.Warn("VALIDATOR_LICENSE_PATH not set, validator runs without a license")
		return license.NewHolder(nil)
	}
	info, err := license.Load(path)
	if err != nil {
		log.Warn("failed to load validator license", "path", path, "error", err)
		return license.NewHolder(nil)
	}
	return license.NewHolder(info)
}

type memberDirectory interface {
	validator.Directory
	admin.MemberDirectory
}

type validationWiring struct {
	service   *validator.Service
	directory memberDirectory
}

func buildValidation(cfg config.Config, in *infra, licenses *license.Holder, log *slog.Logger) (*validationWiring, error) {
	var directory memberDirectory
	if in.db != nil {
		directory = valstore.NewPostgresDirectory(in.db)
	} else {
		directory = valstore.NewInMemoryDirectory(cfg.Validator.SeedMembers...)
	}

	var cache validator.Cache
	if in.redis != nil {
		cache = valstore.NewRedisCache(in.redis.Client, valstore.WithCacheTTL(cfg.Validator.CacheTTL))
	} else {
		cache = valstore.NewInMemoryCache()
	}

	svc, err := validator.New(directory,
		validator.WithCache(cache),
		validator.WithLicenseSource(licenses),
		validator.WithLogger(log),
		validator.WithMetrics(valmetrics.New()),
		validator.WithLookupTimeout(cfg.Validator.LookupTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}
	return &validationWiring{service: svc, directory: directory}, nil
}

type sharedWatchlist interface {
	fraud.Watchlist
	admin.Watchlist
}

type fraudWiring struct {
	check     *fraud.Check
	watchlist sharedWatchlist

	// shared and fallback are set when the watchlist lives in Redis.
	shared   watchlist.Snapshotter
	fallback *watchlist.InMemory
}

func buildFraud(ctx context.Context, cfg config.Config, in *infra, log *slog.Logger) (*fraudWiring, error) {
	opts := []fraud.Option{
		fraud.WithLogger(log),
		fraud.WithMetrics(fraudmetrics.New()),
		fraud.WithTimeout(cfg.Fraud.Timeout),
	}

	w := &fraudWiring{}
	if in.redis != nil {
		shared := watchlist.NewRedis(in.redis.Client)
		if err := watchlist.Seed(ctx, shared, cfg.Fraud.Watchlist); err != nil {
			return nil, err
		}
		w.watchlist = shared
		w.shared = shared
		w.fallback = watchlist.NewInMemory(cfg.Fraud.Watchlist...)
		opts = append(opts,
			fraud.WithFallback(w.fallback),
			fraud.WithBreaker(circuit.New("fraud-watchlist",
				circuit.WithFailureThreshold(cfg.Fraud.FailureThreshold),
			)),
		)
	} else {
		w.watchlist = watchlist.NewInMemory(cfg.Fraud.Watchlist...)
	}

	check, err := fraud.New(w.watchlist, opts...)
	if err != nil {
		return nil, fmt.Errorf("build fraud check: %w", err)
	}
	w.check = check
	return w, nil
}

func newApplicationStore(in *infra) application.Store {
	if in.db != nil {
		return appstore.NewPostgresStore(in.db)
	}
	return appstore.NewInMemoryStore()
}

// buildRateLimit returns the per-actor limiter for application routes. The
// counters live in Redis when it is available so replicas share one budget.
func buildRateLimit(cfg config.Config, in *infra, log *slog.Logger) func(http.Handler) http.Handler {
	var store ratelimit.BucketStore
	if in.redis != nil {
		store = ratestore.NewRedisBucketStore(in.redis.Client)
	} else {
		store = ratestore.NewInMemoryBucketStore()
	}
	mw := ratemw.New(store, cfg.RateLimit.Requests, cfg.RateLimit.Window,
		ratemw.WithLogger(log),
		ratemw.WithMetrics(ratemetrics.New()),
	)
	return mw.RateLimitActor
}
