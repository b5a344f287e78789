package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/snbloader/internal/config"
	"github.com/dbsmedya/snbloader/internal/database"
	"github.com/dbsmedya/snbloader/internal/lock"
	"github.com/dbsmedya/snbloader/internal/logger"
	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/sink/imagesink"
	"github.com/dbsmedya/snbloader/internal/sink/mysqlsink"
)

// openSinkFactory prepares the configured sink. The returned cleanup must be
// called after every sink has been closed.
func openSinkFactory(ctx context.Context, cfg *config.Config, log *logger.Logger, force bool) (sink.Factory, func(), error) {
	noop := func() {}

	switch cfg.Sink.Kind {
	case config.SinkImage:
		return imagesink.Open, noop, nil
	case config.SinkDiscard:
		return (&sink.DiscardFactory{}).Open, noop, nil
	case config.SinkMySQL:
		return openMySQLSink(ctx, cfg, log, force)
	default:
		return nil, noop, fmt.Errorf("unknown sink kind %q", cfg.Sink.Kind)
	}
}

func openMySQLSink(ctx context.Context, cfg *config.Config, log *logger.Logger, force bool) (sink.Factory, func(), error) {
	dbManager := database.NewManager(&cfg.Sink.MySQL)
	if err := dbManager.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to sink database: %w", err)
	}
	cleanup := func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("Failed to close sink database", "error", err)
		}
	}

	if err := dbManager.Ping(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("sink database connection failed: %w", err)
	}

	// Acquire advisory lock so two instances never load the same slice
	if !force {
		loaderLock := lock.NewLoaderLock(dbManager.DB, cfg.Sink.GraphName, cfg.Loader.LoaderIndex)
		if err := loaderLock.AcquireOrFail(ctx); err != nil {
			cleanup()
			if errors.Is(err, lock.ErrLockTimeout) {
				return nil, nil, fmt.Errorf("loader %d of graph %q is already running on another instance (use --force to override)",
					cfg.Loader.LoaderIndex, cfg.Sink.GraphName)
			}
			return nil, nil, fmt.Errorf("failed to acquire loader lock: %w", err)
		}
		log.Infow("Acquired advisory lock for loader", "lock", loaderLock.LockName())
		dbCleanup := cleanup
		cleanup = func() {
			if _, err := loaderLock.ReleaseLock(context.Background()); err != nil {
				log.Warnw("Failed to release loader lock", "error", err)
			}
			dbCleanup()
		}
	} else {
		log.Warnw("Skipping advisory lock acquisition (--force flag used)",
			"loader_index", cfg.Loader.LoaderIndex)
	}

	factory, err := mysqlsink.NewFactory(dbManager.DB, cfg.Sink.TablePrefix, 0)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := factory.EnsureSchema(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return factory.Open, cleanup, nil
}
