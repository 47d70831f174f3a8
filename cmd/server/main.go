package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cardeval/internal/admin"
	"cardeval/internal/application"
	apphandler "cardeval/internal/application/handler"
	appmetrics "cardeval/internal/application/metrics"
	"cardeval/internal/evaluator"
	evalmetrics "cardeval/internal/evaluator/metrics"
	"cardeval/internal/fraud/watchlist"
	jwttoken "cardeval/internal/jwt_token"
	"cardeval/internal/platform/config"
	"cardeval/internal/platform/httpserver"
	"cardeval/internal/platform/logger"
	httptransport "cardeval/internal/transport/http"
	"cardeval/internal/validator/license"
	audit "cardeval/pkg/platform/audit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	infra, err := connectInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	auditSink, err := buildAudit(ctx, cfg, infra, log)
	if err != nil {
		return err
	}
	defer auditSink.publisher.Close()

	licenses := loadLicense(cfg.Validator.LicensePath, log)
	validation, err := buildValidation(cfg, infra, licenses, log)
	if err != nil {
		return err
	}
	fraudCheck, err := buildFraud(ctx, cfg, infra, log)
	if err != nil {
		return err
	}

	eval, err := evaluator.New(validation.service,
		evaluator.WithFraudLookup(fraudCheck.check),
		evaluator.WithLogger(log),
		evaluator.WithMetrics(evalmetrics.New()),
	)
	if err != nil {
		return err
	}
	defer eval.Close()

	appOpts := []application.Option{
		application.WithAuditPublisher(auditSink.publisher),
		application.WithLogger(log),
		application.WithMetrics(appmetrics.New()),
	}
	if infra.txRunner != nil {
		appOpts = append(appOpts, application.WithTxRunner(infra.txRunner))
	}
	appService, err := application.New(eval, newApplicationStore(infra), appOpts...)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:       log,
		JWTValidator: jwttoken.NewMiddlewareValidator(jwtService),
		AdminToken:   cfg.Server.AdminToken,
		Applications: apphandler.New(appService, log),
		RateLimit:    buildRateLimit(cfg, infra, log),
		Admin: admin.New(
			validation.directory,
			fraudCheck.watchlist,
			licenses,
			auditSink.lister,
			log,
		),
		ReadyChecks: infra.readyChecks(),
	})
	if cfg.Server.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set, admin endpoints reject every request")
	}

	srv := httpserver.New(cfg.Server.Addr, router)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting cardeval", "addr", cfg.Server.Addr)
		return httpserver.Serve(gctx, srv, cfg.Server.ShutdownTimeout)
	})

	if cfg.Validator.LicensePath != "" {
		g.Go(func() error {
			return license.Watch(gctx, cfg.Validator.LicensePath, log, func(info *license.ServiceInformation) {
				licenses.Store(info)
				event := audit.Event{
					Action:  string(audit.EventLicenseReloaded),
					Subject: "validator-license",
					Reason:  admin.FromServiceInformation(info, time.Now()).Status,
				}
				if err := auditSink.publisher.Emit(gctx, event); err != nil {
					log.Warn("failed to emit license reload event", "error", err)
				}
			})
		})
	}

	if fraudCheck.shared != nil {
		g.Go(func() error {
			return watchlist.Sync(gctx, fraudCheck.shared, fraudCheck.fallback, cfg.Fraud.SyncInterval, log)
		})
	}

	if auditSink.consumer != nil {
		g.Go(func() error {
			return auditSink.consumer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
