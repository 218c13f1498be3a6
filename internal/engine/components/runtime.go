package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/data/memory"
	"github.com/vendor-ops-ledger/internal/data/mongo"
	"github.com/vendor-ops-ledger/internal/data/postgres"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/outbox"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/metrics"
	"github.com/vendor-ops-ledger/internal/platform/messaging/producers"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
	"github.com/vendor-ops-ledger/internal/store"
)

// Runtime is the storage side of a running engine for the configured driver
type Runtime struct {
	Store         store.Store
	Notifications notification.Repository
	Notifier      service.Notifier

	// Outbox is nil on the memory driver, where notifications are delivered directly
	Outbox outbox.Repository

	closers []func(ctx context.Context) error
}

// OpenRuntime connects the stores named by cfg.Store.Driver. publisher is only
// used by the memory driver; with postgres the outbox poller owns delivery.
func OpenRuntime(
	ctx context.Context,
	cfg *config.Config,
	publisher producers.MessagePublisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) (*Runtime, error) {
	switch cfg.Store.Driver {
	case "memory":
		return openMemory(cfg, publisher, recorder, logger), nil
	case "postgres":
		return openPostgres(ctx, cfg, recorder, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openMemory(cfg *config.Config, publisher producers.MessagePublisher, recorder metrics.Recorder, logger *slog.Logger) *Runtime {
	st := memory.NewStore(logger.With("component", "memory_store"), cfg.Engine.LockTimeout)
	// Local development starts from an empty book
	st.Load(memory.Snapshot{})

	notifications := memory.NewNotificationRepository()
	logger.Warn("Running on the in-memory store, data is lost on restart")

	return &Runtime{
		Store:         st,
		Notifications: notifications,
		Notifier:      NewDirectNotifier(notifications, publisher, recorder, logger.With("component", "notifier")),
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, recorder metrics.Recorder, logger *slog.Logger) (*Runtime, error) {
	if err := persistence.RunMigrations(logger, cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	postgresDB, err := persistence.NewPostgresDB(ctx, logger, &cfg.Postgres, cfg.Engine.LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	mongoDB, err := persistence.NewMongoDB(ctx, logger, &cfg.MongoDB)
	if err != nil {
		postgresDB.Close()
		return nil, fmt.Errorf("failed to initialize mongodb: %w", err)
	}

	notifications := mongo.NewNotificationRepository(logger, mongoDB.Database())
	if err := notifications.EnsureIndexes(ctx); err != nil {
		logger.Warn("Failed to ensure notification indexes", "error", err)
	}

	pgStore := postgres.NewStore(logger.With("component", "postgres_store"), postgresDB)
	outboxRepo := pgStore.Outbox()

	return &Runtime{
		Store:         pgStore,
		Notifications: notifications,
		Notifier:      NewOutboxNotifier(outboxRepo, recorder, logger.With("component", "notifier")),
		Outbox:        outboxRepo,
		closers: []func(context.Context) error{
			mongoDB.Close,
			func(context.Context) error {
				postgresDB.Close()
				return nil
			},
		},
	}, nil
}

// Close releases connections in reverse order of opening
func (r *Runtime) Close(ctx context.Context) error {
	var firstErr error
	for _, closeFn := range r.closers {
		if err := closeFn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
