// Package fetch pulls new or changed objects from a storage container into a
// local directory with a fixed number of concurrent transfers.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"azlogfetch/internal/models"
	"azlogfetch/internal/storage"
)

const DefaultConcurrency = 4

type Options struct {
	// Prefix restricts the listing to keys starting with it.
	Prefix              string
	DestDir             string
	Window              AgeWindow
	DeleteAfterDownload bool
	Concurrency         int
	// DryRun evaluates every object but dispatches no transfers.
	DryRun bool
	// Now is the clock used for age checks; time.Now when nil.
	Now func() time.Time
}

type Syncer struct {
	container storage.Container
	opts      Options
	logger    *slog.Logger
}

func New(container storage.Container, opts Options, logger *slog.Logger) *Syncer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{container: container, opts: opts, logger: logger}
}

// tally is shared by the enumerating goroutine and every worker.
type tally struct {
	skipped       atomic.Int64
	downloaded    atomic.Int64
	wouldDownload atomic.Int64
	deleted       atomic.Int64
	failed        atomic.Int64
	bytes         atomic.Int64

	mu       sync.Mutex
	failures []models.TransferFailure
}

func (t *tally) fail(key, stage string, err error) {
	t.failed.Add(1)
	t.mu.Lock()
	t.failures = append(t.failures, models.TransferFailure{Key: key, Stage: stage, Error: err.Error()})
	t.mu.Unlock()
}

// Run lists the container once, dispatches a transfer for every object that
// is new or changed locally and inside the age window, and returns only after
// all dispatched transfers have finished. Transfer failures are counted in
// the summary; a listing failure aborts the run with ErrEnumeration.
func (s *Syncer) Run(ctx context.Context) (*models.RunSummary, error) {
	started := s.opts.Now()
	limit := int64(s.opts.Concurrency)
	sem := semaphore.NewWeighted(limit)
	t := &tally{}

	s.logger.Info("starting sync",
		"prefix", s.opts.Prefix,
		"destination", s.opts.DestDir,
		"window", s.opts.Window.String(),
		"delete", s.opts.DeleteAfterDownload,
		"concurrency", limit,
		"dry_run", s.opts.DryRun,
	)

	listErr := s.container.List(ctx, s.opts.Prefix, func(obj models.RemoteObject) error {
		localPath := LocalName(s.opts.DestDir, obj.Key)

		if reason, ok := s.decide(obj, localPath, started); !ok {
			t.skipped.Add(1)
			s.logger.Debug("skipping object", "key", obj.Key, "reason", reason)
			return nil
		}

		if s.opts.DryRun {
			t.wouldDownload.Add(1)
			s.logger.Info("would download", "key", obj.Key, "path", localPath, "size", obj.Size)
			return nil
		}

		// Blocks while every permit is held; this paces the listing.
		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("waiting for a transfer slot: %w", err)
		}
		go s.transfer(ctx, sem, t, obj, localPath)
		return nil
	})

	// Every worker releases exactly one permit, so holding all of them means
	// no transfer is still running. Cancellation must not cut this short.
	if err := sem.Acquire(context.WithoutCancel(ctx), limit); err != nil {
		return nil, fmt.Errorf("waiting for transfers to finish: %w", err)
	}
	sem.Release(limit)

	if listErr != nil {
		s.logger.Error("listing failed", "error", listErr)
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, listErr)
	}

	summary := &models.RunSummary{
		Skipped:       t.skipped.Load(),
		Downloaded:    t.downloaded.Load(),
		WouldDownload: t.wouldDownload.Load(),
		Deleted:       t.deleted.Load(),
		Failed:        t.failed.Load(),
		Bytes:         t.bytes.Load(),
		Failures:      t.failures,
		StartedAt:     started,
		FinishedAt:    s.opts.Now(),
	}

	s.logger.Info("sync finished",
		"downloaded", summary.Downloaded,
		"skipped", summary.Skipped,
		"deleted", summary.Deleted,
		"failed", summary.Failed,
		"bytes", summary.Bytes,
		"duration", summary.Duration(),
	)

	return summary, nil
}

// decide applies the change detector and the age window. The reason is only
// meaningful when ok is false.
func (s *Syncer) decide(obj models.RemoteObject, localPath string, now time.Time) (reason string, ok bool) {
	var localExists bool
	var localSize int64

	info, err := os.Stat(localPath)
	switch {
	case err == nil:
		localExists, localSize = true, info.Size()
	case !os.IsNotExist(err):
		s.logger.Debug("cannot stat local copy, treating as missing", "path", localPath, "error", err)
	}

	if !NeedsTransfer(obj.Size, localExists, localSize) {
		if obj.Size == 0 {
			return "empty", false
		}
		return "unchanged", false
	}

	if !s.opts.Window.Accept(obj.LastModified, now) {
		return "outside age window", false
	}

	return "", true
}
