package config

import (
	"fmt"

	"todo-list.com/todo-list/internal/storage"
)

// NewStore opens the driver selected by cfg. The returned func releases it.
func NewStore(cfg Config) (storage.Store, func() error, error) {
	switch cfg.StorageDriver {
	case DriverMemory:
		return storage.NewMemoryStore(), func() error { return nil }, nil

	case DriverSQLite:
		db, err := NewDatabaseClient(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSQLiteStore(db), sqlDB.Close, nil

	case DriverRedis:
		client, err := NewRedisClient(cfg.RedisAddr())
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(client), func() error {
			client.Close()
			return nil
		}, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
