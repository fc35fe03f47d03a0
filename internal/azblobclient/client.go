// Package azblobclient implements storage.Container on top of an Azure Blob
// Storage container using a shared account key.
package azblobclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"azlogfetch/internal/models"
	"azlogfetch/internal/storage"
)

const applicationID = "azlogfetch"

type Client struct {
	container   *container.Client
	name        string
	endpoint    string
	accountName string
}

var _ storage.Container = (*Client)(nil)

// ServiceURL returns the blob endpoint for an account. A non-empty endpoint
// (for example an Azurite emulator URL) takes precedence.
func ServiceURL(accountName, endpoint string) string {
	if endpoint != "" {
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		return endpoint
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
}

func New(accountName, accountKey, endpoint, containerName string) (*Client, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("storage account name and key are required")
	}
	if containerName == "" {
		return nil, fmt.Errorf("container name is required")
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	serviceURL := ServiceURL(accountName, endpoint)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: applicationID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &Client{
		container:   client.ServiceClient().NewContainerClient(containerName),
		name:        containerName,
		endpoint:    serviceURL,
		accountName: accountName,
	}, nil
}

func (c *Client) Name() string     { return c.name }
func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) List(ctx context.Context, prefix string, fn func(models.RemoteObject) error) error {
	opts := &container.ListBlobsFlatOptions{
		Include: container.ListBlobsInclude{Metadata: true},
	}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	pager := c.container.NewListBlobsFlatPager(opts)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list blobs in %s: %w", c.name, describe(err))
		}
		if resp.Segment == nil {
			continue
		}

		for _, item := range resp.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			if err := fn(toRemoteObject(item)); err != nil {
				return err
			}
		}
	}

	return nil
}

// downloadOptions fetches each blob with a single GET stream; parallelism
// comes from the number of blobs in flight.
func downloadOptions() *blob.DownloadFileOptions {
	return &blob.DownloadFileOptions{Concurrency: 1}
}

func (c *Client) Download(ctx context.Context, key, localPath string) error {
	blobClient := c.container.NewBlobClient(key)

	return storage.WriteFile(localPath, func(f *os.File) error {
		if _, err := blobClient.DownloadFile(ctx, f, downloadOptions()); err != nil {
			if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
				return fmt.Errorf("failed to download %s: %w", key, storage.ErrNotFound)
			}
			return fmt.Errorf("failed to download %s: %w", key, describe(err))
		}
		return nil
	})
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.container.NewBlobClient(key).Delete(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return fmt.Errorf("failed to delete %s: %w", key, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", key, describe(err))
	}
	return nil
}

func toRemoteObject(item *container.BlobItem) models.RemoteObject {
	obj := models.RemoteObject{Key: *item.Name}
	if item.Properties == nil {
		return obj
	}
	if item.Properties.ContentLength != nil {
		obj.Size = *item.Properties.ContentLength
	}
	if item.Properties.LastModified != nil {
		obj.LastModified = item.Properties.LastModified.UTC()
	} else {
		// A missing timestamp counts as just written.
		obj.LastModified = time.Now().UTC()
	}
	return obj
}

// describe prefixes the service error code and status so reports show them first.
func describe(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if respErr.ErrorCode != "" {
			return fmt.Errorf("%s (HTTP %d): %w", respErr.ErrorCode, respErr.StatusCode, err)
		}
		return fmt.Errorf("HTTP %d: %w", respErr.StatusCode, err)
	}
	return err
}
