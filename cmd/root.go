package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"azlogfetch/config"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "azlogfetch",
	Short: "Fetch web server log blobs from cloud storage to local disk",
	Long: `azlogfetch copies IIS log blobs (by default from the wad-iis-logfiles
container written by Azure diagnostics) into a local directory.

Only objects that are new or whose size changed are downloaded, so repeated
runs are incremental. Downloaded blobs can optionally be deleted from the
container and a summary can be mailed over SMTP.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage: true,
}

func Execute(config *config.Config) error {
	cfg = config
	rootCmd.SetArgs(TranslateLegacyArgs(os.Args[1:], commandNames()))
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(containerInfoCmd)

	rootCmd.PersistentFlags().StringP("container", "c", "", "Override container (or bucket) name from config")
	rootCmd.PersistentFlags().StringP("provider", "p", "", "Override storage provider from config (azure or s3)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func commandNames() []string {
	names := []string{"help", "completion"}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
		names = append(names, c.Aliases...)
	}
	return names
}

func getContainerName(cmd *cobra.Command, provider string) string {
	container, _ := cmd.Flags().GetString("container")
	if container != "" {
		return container
	}
	return cfg.ContainerFor(provider)
}

func getProvider(cmd *cobra.Command) string {
	provider, _ := cmd.Flags().GetString("provider")
	if provider != "" {
		return provider
	}
	return cfg.Provider
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// newLogger writes text logs to stderr so stdout stays valid JSON.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if isVerbose(cmd) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
