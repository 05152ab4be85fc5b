// Package app wires the roster sync engine to its runtime dependencies: the
// sqlite mirror, the registry client, the cron schedule, and the health
// endpoint.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cadieux/rostersync/internal/platform/timeouts"
	"github.com/cadieux/rostersync/internal/services/roster/domain"
	"github.com/cadieux/rostersync/internal/services/roster/legacy"
	"github.com/cadieux/rostersync/internal/services/roster/storage/sqlite"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls syncd startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port          int
	DBPath        string
	RegistryURL   string
	RegistryToken string
	Schedule      string
	RetryDelay    time.Duration
	FetchTimeout  time.Duration
	// Once names a single event to sync before exiting; empty means run the
	// scheduled loop.
	Once string
}

const (
	defaultSyncdPort = 8091
	defaultSyncdDB   = "data/roster.db"
	defaultSchedule  = "@every 1h"
)

// Run starts syncd runtime dependencies and the scheduled sync loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.RegistryURL) == "" {
		return fmt.Errorf("registry url is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultSyncdPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultSyncdDB
	}
	if strings.TrimSpace(cfg.Schedule) == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = timeouts.RemoteFetch
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create roster storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open roster sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close roster sqlite store: %v", closeErr)
		}
	}()

	registry, err := legacy.New(cfg.RegistryURL, cfg.RegistryToken, cfg.FetchTimeout)
	if err != nil {
		return fmt.Errorf("build registry client: %w", err)
	}

	runner := NewRunner()
	retry := NewRetryScheduler(runner)
	defer retry.Stop()

	service := domain.NewService(domain.ServiceConfig{
		Store:      store,
		Remote:     registry,
		Notifier:   NewChangeLogNotifier(store),
		Retry:      retry,
		Reports:    NewLogReportSink(),
		RetryDelay: cfg.RetryDelay,
	})
	runner.Bind(service)

	if code := strings.TrimSpace(cfg.Once); code != "" {
		outcome, err := runner.SyncEvent(ctx, code)
		if err != nil {
			return fmt.Errorf("sync %s: %w", code, err)
		}
		log.Printf("sync for %s finished: created=%d updated=%d pruned=%d problems=%d",
			code, outcome.MembershipsCreated, outcome.MembershipsUpdated,
			outcome.MembershipsPruned, len(outcome.Problems))
		return nil
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule, func() {
		syncAll(ctx, store, runner)
	}); err != nil {
		return fmt.Errorf("parse sync schedule %q: %w", cfg.Schedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on syncd port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("roster.syncd", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("syncd listening at %v, sync schedule %q", listener.Addr(), cfg.Schedule)
	<-ctx.Done()
	return nil
}

// syncAll runs one sync per known event. Events sync sequentially: the
// registry rate-limits aggressively enough that fan-out buys nothing.
func syncAll(ctx context.Context, store *sqlite.Store, runner *Runner) {
	events, err := store.ListEvents(ctx)
	if err != nil {
		log.Printf("list events for sync: %v", err)
		return
	}
	for _, event := range events {
		if ctx.Err() != nil {
			return
		}
		outcome, err := runner.SyncEvent(ctx, event.Code)
		if err != nil {
			log.Printf("sync %s: %v", event.Code, err)
			continue
		}
		log.Printf("sync %s finished: created=%d updated=%d pruned=%d problems=%d",
			event.Code, outcome.MembershipsCreated, outcome.MembershipsUpdated,
			outcome.MembershipsPruned, len(outcome.Problems))
	}
}
