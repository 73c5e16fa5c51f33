// Package storage keeps small durable records, one value per key.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("storage: record not found")

// Store reads and overwrites whole records.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options selects and configures a driver.
type Options struct {
	Driver      string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
}

// Open returns the store for opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "sqlite", "":
		return OpenSQLite(ctx, opts.SQLitePath)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}

// VisitorKey names a visitor's record.
func VisitorKey(visitorID, record string) string {
	return visitorID + "/" + record
}
