package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"azlogfetch/internal/fetch"
	"azlogfetch/internal/models"
	"azlogfetch/internal/report"
	"azlogfetch/pkg/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <destination> <account> <key> [prefix]",
	Short: "Download new or changed log blobs to a local directory",
	Long: `Download every blob in the container that is missing locally or whose size
differs from the local copy. Blob names are flattened into file names by
replacing "/" with "_", and each file gets the blob's last-modified time.

Zero-length blobs are always skipped. --min-age keeps back blobs that are still
being written; --max-age ignores old ones. Ages are a number followed by h
(hours), d (days) or y (365 days).

The original slash switches (/delete, /minage, /maxage, /smtp, /email) are
accepted as well, and "fetch" may be omitted.`,
	Example: `  # Fetch all new logs
  azlogfetch fetch /srv/iislogs myaccount "$AZURE_STORAGE_KEY"

  # Only one deployment, leave the last hour alone, delete what was fetched
  azlogfetch fetch /srv/iislogs myaccount "$AZURE_STORAGE_KEY" WAD/deployment1/ --min-age 1h --delete

  # Original invocation style with a mailed report
  azlogfetch D:\logs myaccount KEY== /delete /minage 1h /smtp mail.example.com /email ops@example.com

  # See what would be downloaded
  azlogfetch fetch /srv/iislogs myaccount "$AZURE_STORAGE_KEY" --dry-run --verbose`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runFetch(cmd, args)
	},
}

type fetchParams struct {
	Destination string
	Account     string
	Key         string
	Prefix      string
	Window      fetch.AgeWindow
	Delete      bool
	DryRun      bool
	Concurrency int
	SMTPHost    string
	Email       string
	Timeout     time.Duration
}

var errUsage = errors.New("usage")

// newReporter is replaced in tests.
var newReporter = report.New

func parseFetchParams(cmd *cobra.Command, args []string) (*fetchParams, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, errUsage
	}

	p := &fetchParams{
		Destination: args[0],
		Account:     args[1],
		Key:         args[2],
	}
	if len(args) == 4 {
		p.Prefix = args[3]
	}

	flags := cmd.Flags()
	minAge, _ := flags.GetString("min-age")
	maxAge, _ := flags.GetString("max-age")
	p.Delete, _ = flags.GetBool("delete")
	p.DryRun, _ = flags.GetBool("dry-run")
	p.Concurrency, _ = flags.GetInt("concurrency")
	p.SMTPHost, _ = flags.GetString("smtp")
	p.Email, _ = flags.GetString("email")
	timeout, _ := flags.GetInt("timeout")
	p.Timeout = time.Duration(timeout) * time.Second

	if minAge != "" {
		d, err := fetch.ParseAge(minAge)
		if err != nil {
			return nil, fmt.Errorf("--min-age: %w", err)
		}
		p.Window = p.Window.WithMin(d)
	}
	if maxAge != "" {
		d, err := fetch.ParseAge(maxAge)
		if err != nil {
			return nil, fmt.Errorf("--max-age: %w", err)
		}
		p.Window = p.Window.WithMax(d)
	}

	if p.Concurrency <= 0 {
		p.Concurrency = cfg.Concurrency
	}
	if p.SMTPHost == "" {
		p.SMTPHost = cfg.SMTPHost
	}
	if p.Email == "" {
		p.Email = cfg.ReportEmail
	}
	if p.Timeout < 0 {
		return nil, fmt.Errorf("%w: --timeout must not be negative", fetch.ErrInvalidArgument)
	}

	return p, nil
}

func runFetch(cmd *cobra.Command, args []string) {
	params, err := parseFetchParams(cmd, args)
	if errors.Is(err, errUsage) {
		cmd.Usage()
		return
	}
	if err != nil {
		utils.PrintError(err, "fetch")
		return
	}

	runID := uuid.NewString()
	logger := newLogger(cmd).With("run_id", runID)
	reporter := newReporter(params.SMTPHost, cfg.SMTPPort, params.Email)
	provider := getProvider(cmd)
	containerName := getContainerName(cmd, provider)

	fail := func(err error) {
		logger.Error("fetch failed", "error", err)
		if rerr := reporter.Report(report.FailureSubject(params.Account), err.Error()); rerr != nil {
			logger.Warn("could not send report", "error", rerr)
		}
		utils.PrintError(err, "fetch")
	}

	container, err := openStorage(cfg, provider, containerName, params.Account, params.Key)
	if err != nil {
		fail(err)
		return
	}

	if err := os.MkdirAll(params.Destination, 0o755); err != nil {
		fail(fmt.Errorf("failed to create destination %s: %w", params.Destination, err))
		return
	}

	ctx := context.Background()
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	syncer := fetch.New(container, fetch.Options{
		Prefix:              params.Prefix,
		DestDir:             params.Destination,
		Window:              params.Window,
		DeleteAfterDownload: params.Delete,
		Concurrency:         params.Concurrency,
		DryRun:              params.DryRun,
	}, logger)

	summary, err := syncer.Run(ctx)
	if err != nil {
		fail(err)
		return
	}

	if params.DryRun {
		logger.Debug("dry run, no report sent")
	} else if err := reporter.Report(report.Subject(params.Account, summary, time.Now()), report.Body(summary)); err != nil {
		logger.Warn("could not send report", "error", err)
	}

	result := newFetchResult(runID, provider, container, params, summary)
	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "fetch")
		return
	}

	if isVerbose(cmd) {
		cmd.PrintErrf("Fetched %d of %d objects from %s\n",
			summary.Downloaded, summary.Downloaded+summary.Skipped+summary.Failed, container.Name())
	}
}

func newFetchResult(runID, provider string, container namedContainer, p *fetchParams, summary *models.RunSummary) *models.FetchResult {
	result := &models.FetchResult{
		RunID:          runID,
		Provider:       provider,
		Account:        p.Account,
		ContainerName:  container.Name(),
		SourcePrefix:   p.Prefix,
		Destination:    p.Destination,
		DeleteAfter:    p.Delete,
		DryRun:         p.DryRun,
		Summary:        *summary,
		TotalSizeHuman: utils.FormatBytes(summary.Bytes),
		OperationTime:  utils.FormatTime(summary.StartedAt),
		Duration:       summary.Duration().String(),
	}
	if p.Window.HasMin {
		result.MinAge = utils.FormatAge(p.Window.MinAge)
	}
	if p.Window.HasMax {
		result.MaxAge = utils.FormatAge(p.Window.MaxAge)
	}
	return result
}

func addFetchFlags(flags *pflag.FlagSet) {
	flags.Bool("delete", false, "Delete each blob from the container after it was downloaded")
	flags.String("min-age", "", "Only fetch blobs last modified at least this long ago (e.g. 1h, 2d, 1y)")
	flags.String("max-age", "", "Only fetch blobs last modified at most this long ago (e.g. 30d)")
	flags.String("smtp", "", "SMTP host for the summary mail (port from SMTP_PORT, default 25)")
	flags.String("email", "", "Address the summary mail is sent from and to")
	flags.Int("concurrency", 0, fmt.Sprintf("Maximum parallel downloads (default from config, %d)", fetch.DefaultConcurrency))
	flags.Bool("dry-run", false, "Show what would be downloaded without transferring anything")
	flags.Int("timeout", 0, "Timeout in seconds for the whole run (0 waits for every transfer)")
}

func init() {
	addFetchFlags(fetchCmd.Flags())
}
