package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/repo"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/relay_outbox"
	"github.com/light-bringer/pos-service/internal/config"
	"github.com/light-bringer/pos-service/internal/messaging"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
	"github.com/light-bringer/pos-service/internal/pkg/logging"
)

// pruneEvery is how often the relay loop deletes old processed events.
const pruneEvery = time.Hour

func main() {
	once := flag.Bool("once", false, "Relay one batch, prune, and exit")
	flag.Parse()

	if err := run(*once); err != nil {
		log.Fatalf("Outbox relay failed: %v", err)
	}
}

func run(once bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver != config.StoreSpanner {
		return fmt.Errorf("outbox relay needs the spanner store, got %q", cfg.Store.Driver)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  logging.Format(cfg.Log.Format),
		Service: "outbox-relay",
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// 2. Create infrastructure components
	client, err := spanner.NewClient(ctx, cfg.Store.SpannerDatabase)
	if err != nil {
		return fmt.Errorf("failed to create Spanner client: %w", err)
	}
	defer client.Close()

	publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close kafka writer", "error", err)
		}
	}()

	clk := clock.NewRealClock()
	relay := relay_outbox.NewInteractor(
		repo.NewOutboxRepo(client, clk),
		publisher,
		committer.NewCommitter(client),
		int64(cfg.Outbox.MaxRetries),
		clk,
		logger,
	)

	logger.Info("outbox relay started",
		"topic", cfg.Kafka.Topic,
		"brokers", cfg.Kafka.Brokers,
		"batch_size", cfg.Outbox.BatchSize,
		"poll_interval", cfg.Outbox.PollInterval.String(),
		"once", once,
	)

	// 3. Relay
	if once {
		if _, err := relay.Execute(ctx, cfg.Outbox.BatchSize); err != nil {
			return err
		}
		_, err := relay.Prune(ctx, cfg.Outbox.Retention)
		return err
	}
	return loop(ctx, relay, cfg.Outbox, logger)
}

// loop relays on every tick until the context is cancelled. A full batch is
// followed immediately by another so a backlog drains without waiting.
func loop(ctx context.Context, relay *relay_outbox.Interactor, cfg config.OutboxConfig, logger *slog.Logger) error {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	lastPrune := time.Time{}
	for {
		for {
			res, err := relay.Execute(ctx, cfg.BatchSize)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("relay pass failed", "error", err)
				break
			}
			if res.Published+res.Failed < cfg.BatchSize {
				break
			}
		}

		if time.Since(lastPrune) >= pruneEvery {
			if _, err := relay.Prune(ctx, cfg.Retention); err != nil && ctx.Err() == nil {
				logger.Error("outbox prune failed", "error", err)
			}
			lastPrune = time.Now()
		}

		select {
		case <-ctx.Done():
			logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}
