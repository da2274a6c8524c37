package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	consentHandler "portfolio/internal/consent/handler"
	consentService "portfolio/internal/consent/service"
	contactHandler "portfolio/internal/contact/handler"
	contactService "portfolio/internal/contact/service"
	"portfolio/internal/notify"
	"portfolio/internal/platform/httpserver"
	"portfolio/internal/platform/metrics"
	rlMiddleware "portfolio/internal/ratelimit/middleware"
	"portfolio/internal/ratelimit/store/bucket"
	httptransport "portfolio/internal/transport/http"
	"portfolio/pkg/platform/privacy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the consent sweeper and the audit worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	in, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			log.Error("failed to close connections", "error", err)
		}
	}()

	m := metrics.New()
	auditor, err := in.auditPublisher(ctx)
	if err != nil {
		return err
	}

	previewBase := cfg.Server.PublicBaseURL
	if cfg.Production() {
		previewBase = ""
	}
	transport, err := notify.NewTransport(cfg.Mail, previewBase, log)
	if err != nil {
		return fmt.Errorf("configure mail transport: %w", err)
	}
	dispatcher := notify.NewDispatcher(transport, notify.Addresses{
		From:      cfg.Mail.From,
		ContactTo: cfg.Mail.ContactTo,
		VisitorTo: cfg.Mail.VisitorTo,
	}, log, notify.WithMetrics(m))

	resolver := consentService.New(in.store, privacy.NewAddressHasher(cfg.Consent.AddressHashKey), log,
		consentService.WithMetrics(m),
		consentService.WithAuditPublisher(auditor),
	)
	sweeper := consentService.NewSweeper(in.store, cfg.Consent.SweepInterval, log,
		consentService.WithSweeperMetrics(m),
	)

	buckets := bucket.NewInMemoryBucketStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
	limiter := rlMiddleware.New(buckets, log,
		rlMiddleware.WithDisabled(cfg.RateLimit.Disabled),
		rlMiddleware.WithMetrics(m),
	)

	deps := httptransport.Deps{
		Logger:  log,
		Metrics: m,
		Consent: consentHandler.New(resolver, dispatcher, log,
			consentHandler.WithSecureCookies(cfg.Production()),
			consentHandler.WithAuditPublisher(auditor),
			consentHandler.WithRateLimiter(limiter),
		),
		Contact: contactHandler.New(
			contactService.New(dispatcher, log, contactService.WithAuditPublisher(auditor)),
			log,
			contactHandler.WithRateLimiter(limiter),
		),
		Health:         in.store,
		MetricsHandler: promhttp.Handler(),
	}
	if sandbox, ok := transport.(*notify.SandboxTransport); ok && !cfg.Production() {
		deps.Preview = notify.NewPreviewHandler(sandbox, log)
	}

	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(deps), cfg.Server.ReadHeaderTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting portfolio api", "addr", cfg.Server.Addr, "env", cfg.Env)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		return auditor.Run(gctx)
	})
	g.Go(func() error {
		return ignoreCanceled(buckets.StartCleanup(gctx, cfg.RateLimit.IdleTTL))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("portfolio api stopped")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
