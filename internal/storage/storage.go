// Package storage defines the object-storage primitives the fetch engine
// consumes. Backends live in internal/azblobclient and internal/s3client.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"azlogfetch/internal/models"
)

// ErrNotFound is returned by Download and Delete when the object no longer exists.
var ErrNotFound = errors.New("object not found")

// Container is a flat listing of blobs plus per-key download and delete.
type Container interface {
	// List calls fn for every object whose key starts with prefix, page by
	// page. A non-nil error from fn stops the listing and is returned as is.
	List(ctx context.Context, prefix string, fn func(models.RemoteObject) error) error

	// Download writes the whole object to localPath, replacing any existing file.
	Download(ctx context.Context, key, localPath string) error

	Delete(ctx context.Context, key string) error
}

// WriteFile creates (or truncates) localPath and hands it to write. The file
// is removed again when write fails so no truncated copy is left behind.
func WriteFile(localPath string, write func(f *os.File) error) error {
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(localPath)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(localPath)
		return fmt.Errorf("failed to close %s: %w", localPath, err)
	}
	return nil
}
