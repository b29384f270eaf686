// Package storage is a small filesystem abstraction with two drivers:
//
//   - "local": a directory on the local filesystem (default)
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// The catalogue uses it to write exports:
//
//	disks, _ := storage.New(ctx)
//	disk, _ := disks.Disk("")          // STORAGE_DISK
//	_ = disk.Put(ctx, "exports/catalog.json", data)
//	fmt.Println(disk.URL("exports/catalog.json"))
package storage

import (
	"context"
	"io"
)

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(ctx context.Context, path string, content []byte) error
	// PutStream writes from r to path.
	PutStream(ctx context.Context, path string, r io.Reader) error
	// Get returns the full content of path.
	Get(ctx context.Context, path string) ([]byte, error)
	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. A missing file is not an error.
	Delete(ctx context.Context, path string) error
	// Files lists the files directly inside directory.
	Files(ctx context.Context, directory string) ([]string, error)
	// URL returns the public URL for path.
	URL(path string) string
}
