// Package bootstrap builds the store and the event publisher shared by both
// binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/terminal_banking/internal/adapters/events/kafka"
	"github.com/SscSPs/terminal_banking/internal/core/ports/events"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/SscSPs/terminal_banking/internal/core/services"
	"github.com/SscSPs/terminal_banking/internal/platform/config"
	"github.com/SscSPs/terminal_banking/internal/repositories/database/pgsql"
	"github.com/SscSPs/terminal_banking/internal/repositories/memory"
	"github.com/SscSPs/terminal_banking/pkg/database"
)

// Runtime holds the wired services and releases their resources on Close.
type Runtime struct {
	Services *services.Container
	closers  []func()
}

// Close releases resources in reverse order of acquisition.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// New opens the configured store, applies migrations when asked to and wires
// the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	store, err := openStore(ctx, cfg, logger, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	publisher := newPublisher(cfg, logger)
	rt.closers = append(rt.closers, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", slog.String("error", err.Error()))
		}
	})

	rt.Services = services.NewContainer(store, publisher, cfg.BcryptCost)
	return rt, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, rt *Runtime) (portsrepo.LedgerStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store; data is lost on exit")
		return memory.NewStore(), nil
	case config.StoreDriverPostgres:
		if cfg.RunMigrations {
			if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		rt.closers = append(rt.closers, func() { database.ClosePgxPool(pool, logger) })
		return pgsql.NewStore(pool), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("No Kafka brokers configured; ledger events are not published")
		return events.NoopPublisher{}
	}
	logger.Info("Publishing ledger events to Kafka",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaTopic))
	return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
