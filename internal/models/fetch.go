package models

import "time"

// TransferFailure records one object whose download, stamping or deletion failed.
type TransferFailure struct {
	Key   string `json:"key"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// RunSummary is the outcome of one sync run. It is only read after every
// dispatched transfer has finished.
type RunSummary struct {
	Skipped       int64             `json:"skipped"`
	Downloaded    int64             `json:"downloaded"`
	WouldDownload int64             `json:"would_download,omitempty"`
	Deleted       int64             `json:"deleted"`
	Failed        int64             `json:"failed"`
	Bytes         int64             `json:"bytes"`
	Failures      []TransferFailure `json:"failures,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// Duration returns how long the run took.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

type FetchResult struct {
	RunID          string     `json:"run_id"`
	Provider       string     `json:"provider"`
	Account        string     `json:"account"`
	ContainerName  string     `json:"container_name"`
	SourcePrefix   string     `json:"source_prefix,omitempty"`
	Destination    string     `json:"destination"`
	DeleteAfter    bool       `json:"delete_after_download"`
	DryRun         bool       `json:"dry_run,omitempty"`
	MinAge         string     `json:"min_age,omitempty"`
	MaxAge         string     `json:"max_age,omitempty"`
	Summary        RunSummary `json:"summary"`
	TotalSizeHuman string     `json:"total_size_human"`
	OperationTime  string     `json:"operation_time"`
	Duration       string     `json:"duration"`
}
