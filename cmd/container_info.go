package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"azlogfetch/internal/models"
	"azlogfetch/internal/storage"
	"azlogfetch/pkg/utils"
)

var containerInfoCmd = &cobra.Command{
	Use:   "container-info [prefix]",
	Short: "Summarize the blobs waiting in the container",
	Long: `Count the blobs in the container (optionally under a prefix), their total
size and the most recent modification time.
Credentials are taken from the configuration (AZURE_STORAGE_ACCOUNT and
AZURE_STORAGE_KEY, or the S3 settings for the s3 provider).`,
	Example: `  # Info for the configured container
  azlogfetch container-info

  # Only one deployment
  azlogfetch container-info WAD/deployment1/

  # Verbose output
  azlogfetch container-info --verbose`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runContainerInfo(cmd, args)
	},
}

func runContainerInfo(cmd *cobra.Command, args []string) {
	var prefix string
	if len(args) == 1 {
		prefix = args[0]
	}

	provider := getProvider(cmd)
	container, err := openStorage(cfg, provider, getContainerName(cmd, provider), "", "")
	if err != nil {
		utils.PrintError(err, "container-info")
		return
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.PrintErrf("Getting container information for: %s\n", container.Name())
	}

	info, err := collectContainerInfo(ctx, container, prefix)
	if err != nil {
		utils.PrintError(err, "container-info")
		return
	}
	info.Provider = provider
	info.ContainerName = container.Name()
	info.APIEndpoint = container.Endpoint()

	if err := utils.PrintJSON(info); err != nil {
		utils.PrintError(err, "container-info")
		return
	}

	if isVerbose(cmd) {
		cmd.PrintErrln("Container info retrieved successfully")
	}
}

func collectContainerInfo(ctx context.Context, container storage.Container, prefix string) (*models.ContainerInfo, error) {
	info := &models.ContainerInfo{Prefix: prefix}

	err := container.List(ctx, prefix, func(obj models.RemoteObject) error {
		info.ObjectCount++
		info.TotalSizeBytes += obj.Size
		if obj.Size == 0 {
			info.EmptyObjects++
		}
		if obj.LastModified.After(info.LastModified) {
			info.LastModified = obj.LastModified
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	info.TotalSizeHuman = utils.FormatBytes(info.TotalSizeBytes)
	return info, nil
}

func init() {
	containerInfoCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
