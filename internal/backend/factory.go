package backend

import (
	"context"
	"fmt"
	"log/slog"

	"thrifty/internal/amqp"
	"thrifty/internal/auth"
	"thrifty/internal/snapshot"
	"thrifty/internal/snapshot/file"
	"thrifty/internal/snapshot/memory"
	"thrifty/internal/snapshot/s3"
	"thrifty/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend assembles the persistence stack: local tier, optional
// S3 remote, and either a tiered store (direct mode) or an AMQP
// publisher (worker mode). A remote that fails to initialize downgrades
// to local-only instead of failing startup.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	result, err := f.createLocal(config)
	if err != nil {
		return nil, err
	}

	if config.RemoteBackend == "s3" {
		remote, err := s3.New(ctx, config.S3)
		if err != nil {
			f.logger.Warn("Failed to initialize S3 remote, continuing local-only", "error", err)
		} else {
			result.Remote = remote
			f.logger.Info("Initialized S3 remote tier",
				"bucket", config.S3.Bucket,
				"key", config.S3.Key,
				"endpoint", config.S3.Endpoint)
		}
	}

	switch {
	case result.Remote != nil && config.SyncMode == "direct":
		result.Store = snapshot.NewTiered(result.Remote, result.Local)
		f.logger.Info("Remote tier wired inline", "sync_mode", config.SyncMode)
	case result.Remote != nil && config.SyncMode == "worker":
		publisher, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			result.Publisher = publisher
			f.logger.Info("Initialized AMQP publisher",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return result, nil
}

func (f *DefaultFactory) createLocal(config Config) (*Result, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{
			Store:   repo,
			Local:   repo,
			Users:   repo,
			Cleanup: repo.Close,
		}, nil

	case FileBackend:
		store := file.New(config.DataDir)
		f.logger.Info("Initialized file backend", "data_dir", config.DataDir)
		return &Result{
			Store: store,
			Local: store,
			Users: auth.NewMemoryUserStore(),
		}, nil

	case MemoryBackend:
		store := memory.New()
		f.logger.Info("Initialized memory backend")
		return &Result{
			Store: store,
			Local: store,
			Users: auth.NewMemoryUserStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
