package s3client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"azlogfetch/config"
	"azlogfetch/internal/models"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(&config.Config{Region: "us-east-1"})
	if err == nil {
		t.Fatal("New() without bucket returned nil error")
	}
}

func TestToRemoteObject(t *testing.T) {
	lmt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	obj := toRemoteObject(types.Object{
		Key:          aws.String("logs/u_ex1.log"),
		Size:         aws.Int64(2048),
		LastModified: aws.Time(lmt),
	})

	if obj.Key != "logs/u_ex1.log" || obj.Size != 2048 || !obj.LastModified.Equal(lmt) {
		t.Errorf("toRemoteObject() = %+v", obj)
	}

	empty := toRemoteObject(types.Object{Key: aws.String("placeholder")})
	if empty.Size != 0 {
		t.Errorf("toRemoteObject() size = %d, want 0", empty.Size)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("wrapped: %w", &types.NoSuchKey{})) {
		t.Error("isNotFound(NoSuchKey) = false, want true")
	}
	if !isNotFound(&types.NotFound{}) {
		t.Error("isNotFound(NotFound) = false, want true")
	}
	if isNotFound(fmt.Errorf("access denied")) {
		t.Error("isNotFound(other) = true, want false")
	}
}

// Integration tests for S3 client
// These tests require a real S3 connection and are skipped by default
// To run these tests, set the environment variable S3_INTEGRATION_TEST=true

func TestListAndDownload(t *testing.T) {
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}

	cfg := &config.Config{
		BucketName: os.Getenv("TEST_BUCKET_NAME"),
		Region:     os.Getenv("TEST_REGION"),
		ApiURL:     os.Getenv("TEST_API_URL"),
		AccessKey:  os.Getenv("TEST_ACCESS_KEY"),
		SecretKey:  os.Getenv("TEST_SECRET_KEY"),
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var first *models.RemoteObject
	err = client.List(ctx, "", func(obj models.RemoteObject) error {
		if first == nil && obj.Size > 0 {
			first = &obj
		}
		return nil
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if first == nil {
		t.Skip("bucket has no non-empty objects")
	}

	localPath := filepath.Join(t.TempDir(), "object")
	if err := client.Download(ctx, first.Key, localPath); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != first.Size {
		t.Errorf("downloaded size = %d, want %d", info.Size(), first.Size)
	}
}
