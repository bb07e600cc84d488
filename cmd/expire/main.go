// Command expire closes contact requests that stayed pending past the
// retention window. It runs once, or on a fixed interval with -every.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talents/internal/audit"
	"talents/internal/bootstrap"
	"talents/internal/config"
	"talents/internal/featureflags"
	"talents/internal/notifications"
	"talents/internal/observability"
	"talents/internal/repository"
	"talents/internal/service"
)

func main() {
	retention := flag.Duration("retention", 0, "Pending age to expire (defaults to CONTACT_REQUEST_RETENTION_HOURS)")
	every := flag.Duration("every", 0, "Repeat the sweep on this interval instead of running once")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *retention <= 0 {
		*retention = cfg.ContactRequestRetention()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ServiceName: "talents-expire"})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	dispatcher := notifications.NewDispatcher(cfg.NotificationTimeout())
	defer dispatcher.Wait()

	var notifier service.ContactNotifier
	if rt.Redis != nil {
		notifier = notifications.NewNotifier(rt.Redis)
	}
	flags := featureflags.NewPolicyManager(cfg.FeatureFlags)
	if unknown := flags.Unknown(); len(unknown) > 0 {
		log.Printf("Ignoring unknown feature flags: %v", unknown)
	}
	svc := service.NewContactRequestService(
		repository.NewContactRequestRepository(rt.DB),
		repository.NewUserRepository(rt.DB),
		audit.LogSink{},
		notifier,
		dispatcher,
		flags,
	)

	if err := sweep(ctx, svc, *retention); err != nil {
		log.Printf("Expiry sweep failed: %v", err)
	}
	if *every <= 0 {
		return
	}

	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sweep(ctx, svc, *retention); err != nil {
				log.Printf("Expiry sweep failed: %v", err)
			}
		}
	}
}

func sweep(ctx context.Context, svc *service.ContactRequestService, retention time.Duration) error {
	span, ctx := observability.NewSpan(ctx, "expire.sweep")
	defer span.End()

	result, err := svc.ExpireStale(ctx, retention)
	span.AddAttributes(observability.SweepAttributes(result.Expired, result.Skipped)...)
	if err != nil {
		span.SetError(err)
		return err
	}
	observability.GlobalLogger.Info("expiry sweep finished",
		"expired", result.Expired,
		"skipped", result.Skipped,
		"retention", retention.String(),
	)
	return nil
}
