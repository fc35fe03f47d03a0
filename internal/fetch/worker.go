package fetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"azlogfetch/internal/models"
)

const (
	stageDownload = "download"
	stageStamp    = "stamp"
	stageDelete   = "delete"
	stagePanic    = "panic"
)

// transfer fetches one object, stamps the local copy with the remote
// modification time and optionally deletes the remote object. It releases
// its permit on every path.
func (s *Syncer) transfer(ctx context.Context, sem *semaphore.Weighted, t *tally, obj models.RemoteObject, localPath string) {
	defer sem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("transfer panicked", "key", obj.Key, "panic", r)
			t.fail(obj.Key, stagePanic, fmt.Errorf("%v", r))
		}
	}()

	logger := s.logger.With("key", obj.Key, "path", localPath)
	begin := time.Now()

	if err := s.container.Download(ctx, obj.Key, localPath); err != nil {
		logger.Error("download failed", "error", err)
		t.fail(obj.Key, stageDownload, err)
		return
	}

	if err := stampTimes(localPath, obj.LastModified); err != nil {
		logger.Error("setting file times failed", "error", err)
		t.fail(obj.Key, stageStamp, fmt.Errorf("failed to set times on %s: %w", localPath, err))
		return
	}

	t.downloaded.Add(1)
	t.bytes.Add(obj.Size)
	logger.Debug("downloaded", "size", obj.Size, "took", time.Since(begin))

	if !s.opts.DeleteAfterDownload {
		return
	}

	if err := s.container.Delete(ctx, obj.Key); err != nil {
		logger.Error("delete failed", "error", err)
		t.fail(obj.Key, stageDelete, err)
		return
	}
	t.deleted.Add(1)
	logger.Debug("deleted remote object")
}
