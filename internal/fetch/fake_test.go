package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"azlogfetch/internal/models"
	"azlogfetch/internal/storage"
)

// fakeContainer is an in-memory storage.Container that records how many
// downloads run at once.
type fakeContainer struct {
	objects []models.RemoteObject
	listErr error // returned after all objects were listed

	downloadDelay time.Duration
	failDownload  map[string]error
	failDelete    map[string]error
	onDelete      func(key string)

	active    atomic.Int32
	maxActive atomic.Int32
	finished  atomic.Int32

	mu         sync.Mutex
	downloaded []string
	deleted    []string
}

var _ storage.Container = (*fakeContainer)(nil)

func (f *fakeContainer) List(ctx context.Context, prefix string, fn func(models.RemoteObject) error) error {
	for _, obj := range f.objects {
		if prefix != "" && !strings.HasPrefix(obj.Key, prefix) {
			continue
		}
		if err := fn(obj); err != nil {
			return err
		}
	}
	return f.listErr
}

func (f *fakeContainer) Download(ctx context.Context, key, localPath string) error {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	defer f.finished.Add(1)

	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	if f.downloadDelay > 0 {
		time.Sleep(f.downloadDelay)
	}

	if err := f.failDownload[key]; err != nil {
		return err
	}

	obj, ok := f.lookup(key)
	if !ok {
		return fmt.Errorf("download %s: %w", key, storage.ErrNotFound)
	}

	if err := os.WriteFile(localPath, bytes.Repeat([]byte("x"), int(obj.Size)), 0o644); err != nil {
		return err
	}

	f.mu.Lock()
	f.downloaded = append(f.downloaded, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeContainer) Delete(ctx context.Context, key string) error {
	if f.onDelete != nil {
		f.onDelete(key)
	}
	if err := f.failDelete[key]; err != nil {
		return err
	}

	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeContainer) lookup(key string) (models.RemoteObject, bool) {
	for _, obj := range f.objects {
		if obj.Key == key {
			return obj, true
		}
	}
	return models.RemoteObject{}, false
}

var errBoom = errors.New("boom")
