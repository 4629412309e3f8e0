package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"registrar/internal/audit"
	auditmemory "registrar/internal/audit/store/memory"
	auditpostgres "registrar/internal/audit/store/postgres"
	httpapi "registrar/internal/http"
	"registrar/internal/jwtauth"
	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	platformmetrics "registrar/internal/platform/metrics"
	platformredis "registrar/internal/platform/redis"
	registryhandler "registrar/internal/registry/handler"
	registrymetrics "registrar/internal/registry/metrics"
	"registrar/internal/registry/policy"
	"registrar/internal/registry/provision"
	"registrar/internal/registry/service"
	"registrar/internal/registry/store/allowlist"
	"registrar/internal/registry/store/record"
	"registrar/internal/registry/store/season"
	"registrar/internal/snapshot"
	id "registrar/pkg/domain"
)

const snapshotInterval = time.Minute

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	records := record.NewInMemory()
	seasons := season.NewInMemory()
	addresses := allowlist.NewInMemory()
	pol := policy.New(id.Principal(cfg.BootstrapAdmin))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit trail: persist to Postgres when configured, otherwise in memory.
	var auditStore audit.Store
	if cfg.PostgresDSN != "" {
		pg, err := auditpostgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("connect audit postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		auditStore = pg
	} else {
		auditStore = auditmemory.New()
	}

	g, ctx := errgroup.WithContext(ctx)

	// With brokers configured events flow through Kafka and a consumer
	// persists them; without brokers they are appended directly.
	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, audit.DefaultTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		worker, err := audit.NewWorker(cfg.KafkaBrokers, audit.DefaultTopic, auditStore, log)
		if err != nil {
			log.Error("start audit worker", "error", err)
			os.Exit(1)
		}
		g.Go(func() error { return worker.Run(ctx) })
	} else {
		publisher = audit.NewStorePublisher(auditStore)
	}

	registry := service.New(records, seasons, addresses, pol, provision.NewLocal(),
		service.WithAudit(publisher),
		service.WithMetrics(registrymetrics.New()),
		service.WithLogger(log),
		service.WithServiceDomain(cfg.ServiceDomain),
	)

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		manager := snapshot.NewManager(redisClient, records, seasons, addresses, pol, log)
		if err := manager.Restore(ctx); err != nil {
			log.Error("restore snapshot", "error", err)
			os.Exit(1)
		}
		g.Go(func() error { return manager.Run(ctx, snapshotInterval) })
	}

	jwtService := jwtauth.New(cfg.JWTSigningKey, "registrar", "registrar-api")
	handler := registryhandler.New(registry, auditStore, log, platformmetrics.New(), jwtService)
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(handler))

	g.Go(func() error {
		log.Info("starting registrar", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("registrar exited", "error", err)
		os.Exit(1)
	}
	log.Info("registrar stopped")
}
