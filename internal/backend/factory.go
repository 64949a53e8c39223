package backend

import (
	"context"
	"errors"
	"fmt"

	"controlly/internal/amqp"
	"controlly/internal/log"
	"controlly/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	slot, err := f.createSlot(ctx, config)
	if err != nil {
		return nil, err
	}

	// AMQP is optional: a broker that is down must not keep the API from starting.
	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			events = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized storage backend",
		"type", config.Type.String(),
		"amqp_enabled", events != nil)

	return &Result{
		Slot:   slot,
		Events: events,
		Cleanup: func() error {
			var errs []error
			if events != nil {
				errs = append(errs, events.Close())
			}
			errs = append(errs, slot.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSlot(ctx context.Context, config Config) (storage.Slot, error) {
	switch config.Type {
	case MemoryBackend:
		return storage.NewMemorySlot(), nil
	case FileBackend:
		slot, err := storage.NewFileSlot(config.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file slot: %w", err)
		}
		f.logger.Debug("Using file slots", "data_directory", config.DataDirectory)
		return slot, nil
	case SQLiteBackend:
		slot, err := storage.NewSQLiteSlot(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite slot: %w", err)
		}
		f.logger.Debug("Using SQLite slots", "db_path", config.SQLiteDBPath)
		return slot, nil
	case PostgresBackend:
		slot, err := storage.NewPostgresSlot(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres slot: %w", err)
		}
		return slot, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
