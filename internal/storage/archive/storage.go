// Package archive persists run artifacts (position snapshots, backtest
// results) on a pluggable backend: local filesystem for single-machine
// use, S3 for shared setups.
package archive

import (
	"context"
	"fmt"

	"github.com/adaptivex/sectorbot/internal/config"
)

// Storage is a flat key/value blob store.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Open builds the backend selected by the snapshot configuration.
// An empty type defaults to the local filesystem.
func Open(cfg config.SnapshotConfig) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown snapshot storage type %q", cfg.Type)
	}
}
