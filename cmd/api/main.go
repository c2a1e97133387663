package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/events"
	"product-catalog/internal/handler"
	"product-catalog/internal/metrics"
	"product-catalog/internal/router"
	"product-catalog/internal/service"
	"product-catalog/internal/sysinfo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting product catalog API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []service.Option
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts = append(opts, service.WithCreatedCounter(m.ProductsCreated))
	}

	if cfg.Events.Enabled {
		sqsClient, err := events.NewSQSClient(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to initialize SQS client: %w", err)
		}
		opts = append(opts, service.WithPublisher(events.NewPublisher(sqsClient, cfg.Events.QueueURL, logger)))
		logger.Info().Str("queue_url", cfg.Events.QueueURL).Msg("product events enabled")
	}

	productService := service.NewProductService(repo, logger, opts...)

	seedCtx, seedCancel := context.WithTimeout(ctx, 30*time.Second)
	_, err = productService.Seed(seedCtx)
	seedCancel()
	if err != nil {
		return fmt.Errorf("failed to seed product store: %w", err)
	}

	productHandler := handler.NewProductHandler(productService, logger)
	mux := router.New(productHandler, m, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)).
			Str("store", cfg.Store.Backend).
			Msg("server running")
		serverErrors <- server.ListenAndServe()
	}()

	info, err := sysinfo.Collect(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("incomplete system information")
	}
	sysinfo.Log(logger, info)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
