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

	"feesbook/internal/amqp"
	"feesbook/internal/backend"
	"feesbook/internal/cli"
	apphttp "feesbook/internal/http"
	"feesbook/internal/ledger"
	"feesbook/internal/receipt"
	"feesbook/internal/registry"
	"feesbook/internal/stats"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := backend.Open(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to open data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer stores.Close()

	reg, err := registry.New(ctx, stores.Students)
	if err != nil {
		logger.Error("Failed to load student registry", "error", err)
		os.Exit(1)
	}
	led, err := ledger.New(ctx, stores.Payments)
	if err != nil {
		logger.Error("Failed to load payment ledger", "error", err)
		os.Exit(1)
	}

	institute := receipt.Institute{Name: cfg.InstituteName, Address: cfg.InstituteAddress}
	renderer, err := receipt.NewRenderer(institute)
	if err != nil {
		logger.Error("Failed to initialize receipt renderer", "error", err)
		os.Exit(1)
	}

	deps := apphttp.Deps{
		Registry:  reg,
		Ledger:    led,
		Stats:     stats.New(reg, led),
		Receipts:  renderer,
		Institute: institute,
	}

	if cfg.SyncEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The worker's pending scan covers missed publishes.
			logger.Warn("Failed to initialize AMQP client, register sync publishing disabled", "error", err)
		} else {
			defer client.Close()
			deps.Publisher = client
			logger.Info("Register sync publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting feesbook server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
