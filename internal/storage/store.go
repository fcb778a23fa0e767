// Package storage holds the key-value drivers the task list persists into.
package storage

import (
	"context"
	"errors"
)

// Store is a string key-value medium. Get reports ok=false for an absent key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key, value string) error
}

// VersionedStore adds a revision counter per key for compare-and-set writes.
// Version 0 means the key does not exist yet.
type VersionedStore interface {
	Store

	GetVersioned(ctx context.Context, key string) (value string, version uint, ok bool, err error)

	SetIfVersion(ctx context.Context, key, value string, version uint) (uint, error)
}

var ErrOptimisticLock = errors.New("optimistic locking conflict")
