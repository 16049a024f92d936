// Package persistence selects and opens the key-value state backend the stores
// write their snapshots to. It is the only package that imports the concrete
// backends under internal/infra/persistence.
package persistence

import (
	"context"
	"fmt"

	"nutriplan/internal/blob"
	"nutriplan/internal/infra/persistence/blobkv"
	"nutriplan/internal/infra/persistence/memory"
	"nutriplan/internal/infra/persistence/postgres"
	"nutriplan/internal/infra/persistence/sqlite"
	"nutriplan/pkg/domain"
)

// Driver identifies a concrete persistent storage implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file (default)
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverBlob     Driver = "blob"     // JSON objects in a blob store
)

// Drivers lists the accepted driver names.
var Drivers = []Driver{DriverMemory, DriverSQLite, DriverPostgres, DriverBlob}

// Adapter is the key-value contract the stores persist through.
type Adapter interface {
	domain.StateStore
	// Driver reports the backend, e.g. "sqlite" or "blob/s3".
	Driver() string
}

// Config selects and configures a backend.
type Config struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
	Blob        blob.Config
	// BlobPrefix is the object key prefix when Driver is blob.
	BlobPrefix string
}

var (
	_ Adapter = (*memory.Store)(nil)
	_ Adapter = (*sqlite.Store)(nil)
	_ Adapter = (*postgres.Store)(nil)
	_ Adapter = (*blobkv.Store)(nil)
)

// Open returns the Adapter selected by cfg.Driver. An empty driver means sqlite.
func Open(ctx context.Context, cfg Config) (Adapter, error) {
	switch cfg.Driver {
	case DriverMemory:
		return memory.New(), nil
	case "", DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return postgres.Open(ctx, cfg.PostgresDSN)
	case DriverBlob:
		bs, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, fmt.Errorf("open blob backend: %w", err)
		}
		return blobkv.New(bs, cfg.BlobPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewMemory returns an in-memory Adapter for tests.
func NewMemory() Adapter { return memory.New() }

// NewBlob returns an Adapter writing state objects into an existing blob store.
func NewBlob(bs blob.Store, prefix string) Adapter { return blobkv.New(bs, prefix) }
