package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"market-node/contract"
	"market-node/domain"
	"market-node/infrastructure/search"
	"market-node/infrastructure/storage"
	"market-node/infrastructure/transport"
	"market-node/internal"
	"market-node/observability"
	"market-node/runtime"
	"market-node/runtime/workers"
	"market-node/services"
	"market-node/sink"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Node terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, runs them until a signal is received and
// lets every defer release the stores before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Stores (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	identities, err := storage.NewIdentityRepository(db, config.IdentityCacheSize)
	if err != nil {
		return exitRuntime, err
	}
	for _, address := range config.Addresses() {
		if _, err = identities.Add(domain.Identity{Address: address, CreatedAt: time.Now().UTC()}); err != nil {
			return exitRuntime, fmt.Errorf("unable to register local address %s: %w", address, err)
		}
	}

	// 3. Transport & notification sinks
	network, closeTransport := buildTransport(config, logger)
	defer closeTransport()
	notifications, closeSinks := buildSinks(config, logger)
	defer closeSinks()

	// 4. Pipeline
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	deps := services.Deps{
		Markets:      storage.NewMarketRepository(db),
		Listings:     storage.NewListingItemRepository(db),
		Comments:     storage.NewCommentRepository(db),
		CommentIndex: search.NewCommentIndex(blugeWriter, logger),
		Bids:         storage.NewBidRepository(db),
		Orders:       storage.NewOrderRepository(db),
		Identities:   identities,
		Log:          logger,
	}
	orchestrator, err := runtime.NewOrchestrator(
		runtime.OrchestratorConfig{
			PollInterval:  config.PollInterval,
			BatchSize:     config.PollBatchSize,
			Retry:         runtime.RetryPolicy{Min: config.RetryMin, Max: config.RetryMax, Factor: config.RetryFactor},
			DaysRetention: config.DefaultDaysRetention,
			Identities:    identities,
		},
		logger,
		workers.NewSupervisor(logger, config.RestartInterval),
		network,
		storage.NewMessageRepository(db, logger),
		notifications,
		metrics,
		services.Registrations(deps)...,
	)
	if err != nil {
		return exitConfig, err
	}

	// 5. Run the workers and the metrics endpoint until a signal or a failure
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orchestrator.Start(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("Serving metrics", "address", config.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		return exitRuntime, err
	}
	logger.Info("Node stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

func buildTransport(config internal.Config, logger *slog.Logger) (contract.Transport, func()) {
	if config.Transport == internal.TransportKafka {
		k := transport.NewKafka(transport.KafkaConfig{
			Brokers:     config.Brokers(),
			Topic:       config.KafkaTopic,
			GroupID:     config.KafkaGroupID,
			PollWindow:  config.KafkaPollWindow,
			FeePerKBDay: config.FeePerKBDay,
		}, logger)
		logger.Info("Using kafka transport", "brokers", config.Brokers(), "topic", config.KafkaTopic, "group", config.KafkaGroupID)
		return k, func() {
			if err := k.Close(); err != nil {
				logger.Warn("Unable to close kafka transport", "error", err)
			}
		}
	}
	logger.Info("Using in-memory loopback transport")
	return transport.NewLoopback(config.FeePerKBDay), func() {}
}

func buildSinks(config internal.Config, logger *slog.Logger) (contract.NotificationSink, func()) {
	sinks := []contract.NotificationSink{sink.NewLogSink(logger)}
	if config.KafkaNotificationTopic == "" || len(config.Brokers()) == 0 {
		return sink.NewFanoutSink(sinks...), func() {}
	}
	kafkaSink := sink.NewKafkaSink(config.Brokers(), config.KafkaNotificationTopic)
	return sink.NewFanoutSink(append(sinks, kafkaSink)...), func() {
		if err := kafkaSink.Close(); err != nil {
			logger.Warn("Unable to close kafka notification sink", "error", err)
		}
	}
}
