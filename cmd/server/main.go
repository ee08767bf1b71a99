package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"faucetgate/internal/disbursement/handler"
	disbursementmetrics "faucetgate/internal/disbursement/metrics"
	"faucetgate/internal/disbursement/service"
	"faucetgate/internal/platform/config"
	"faucetgate/internal/platform/httpserver"
	"faucetgate/internal/platform/logger"
	platformmetrics "faucetgate/internal/platform/metrics"
	platformredis "faucetgate/internal/platform/redis"
	ratelimitmetrics "faucetgate/internal/ratelimit/metrics"
	ratelimitmw "faucetgate/internal/ratelimit/middleware"
	"faucetgate/internal/ratelimit/stats"
	ratelimitstore "faucetgate/internal/ratelimit/store"
	"faucetgate/pkg/platform/audit/publisher"
	"faucetgate/pkg/platform/middleware/metadata"
	"faucetgate/pkg/platform/middleware/requesttime"
)

const auditBuffer = 256

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("FAUCET_CONFIG"), "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("faucetgate exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := buildStorage(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.requests.Close(); err != nil {
			log.Error("close request ledger", "error", err)
		}
	}()

	auditPublisher := publisher.NewPublisher(stores.audit,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	verifier, err := buildVerifier(cfg.Identity, auditPublisher, log)
	if err != nil {
		return err
	}
	ledgerClient, err := buildLedger(cfg.Ledger, log)
	if err != nil {
		return err
	}
	amount, err := cfg.Faucet.GrantAmount()
	if err != nil {
		return err
	}

	reg := prometheus.DefaultRegisterer
	svc, err := service.New(stores.requests, ledgerClient, verifier,
		service.WithAmount(amount),
		service.WithCooldown(cfg.Faucet.Cooldown),
		service.WithVerifyTimeout(cfg.Identity.Timeout),
		service.WithTransferTimeout(cfg.Ledger.Timeout),
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(disbursementmetrics.NewWithRegisterer(reg)),
	)
	if err != nil {
		return err
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var recorder stats.Recorder = stats.NewMemoryStore()
	if redisClient != nil {
		defer redisClient.Close()
		recorder = stats.NewRedisStore(redisClient.Client)
		log.Info("throttle decisions recorded in redis")
	}

	limiter := ratelimitstore.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst,
		ratelimitstore.WithIdleTTL(cfg.RateLimit.TTL),
	)
	rlMetrics := ratelimitmetrics.NewWithRegisterer(reg)
	throttle := ratelimitmw.New(limiter, log,
		ratelimitmw.WithDisabled(cfg.RateLimit.RPS <= 0),
		ratelimitmw.WithStats(recorder),
		ratelimitmw.WithMetrics(rlMetrics),
		ratelimitmw.WithAuditPublisher(auditPublisher),
	)

	h := handler.New(svc, auditPublisher, log)
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(platformmetrics.NewWithRegisterer(reg).Middleware)
	r.Group(func(r chi.Router) {
		r.Use(throttle.RateLimit)
		h.Register(r)
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("faucetgate listening",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Driver,
			"ledger", cfg.Ledger.Mode,
			"identity", cfg.Identity.Mode,
			"amount", amount.String(),
			"cooldown", cfg.Faucet.Cooldown.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		limiter.RunJanitor(gctx, rlMetrics.SetTrackedKeys)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
