package s3client

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appConfig "azlogfetch/config"
	"azlogfetch/internal/models"
	"azlogfetch/internal/storage"
)

type Client struct {
	s3Client   *s3.Client
	downloader *manager.Downloader
	config     *appConfig.Config
}

var _ storage.Container = (*Client)(nil)

func New(cfg *appConfig.Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		// One part at a time: objects are fetched whole, parallelism comes from the scheduler.
		downloader: manager.NewDownloader(s3Client, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
		config: cfg,
	}, nil
}

func (c *Client) Name() string     { return c.config.BucketName }
func (c *Client) Endpoint() string { return c.config.ApiURL }

func (c *Client) List(ctx context.Context, prefix string, fn func(models.RemoteObject) error) error {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.config.BucketName),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(c.s3Client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if err := fn(toRemoteObject(obj)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Client) Download(ctx context.Context, key, localPath string) error {
	return storage.WriteFile(localPath, func(f *os.File) error {
		_, err := c.downloader.Download(ctx, f, &s3.GetObjectInput{
			Bucket: aws.String(c.config.BucketName),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("failed to download %s: %w", key, storage.ErrNotFound)
			}
			return fmt.Errorf("failed to download %s: %w", key, err)
		}
		return nil
	})
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("failed to delete %s: %w", key, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func toRemoteObject(obj types.Object) models.RemoteObject {
	return models.RemoteObject{
		Key:          aws.ToString(obj.Key),
		Size:         aws.ToInt64(obj.Size),
		LastModified: aws.ToTime(obj.LastModified).UTC(),
	}
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
