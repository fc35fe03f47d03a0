package azblobclient

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azlogfetch/internal/models"
)

func TestServiceURL(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		endpoint string
		expected string
	}{
		{"Public cloud", "myaccount", "", "https://myaccount.blob.core.windows.net/"},
		{"Emulator", "devstoreaccount1", "http://127.0.0.1:10000/devstoreaccount1", "http://127.0.0.1:10000/devstoreaccount1/"},
		{"Endpoint with slash", "x", "https://blob.example.net/", "https://blob.example.net/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ServiceURL(tt.account, tt.endpoint))
		})
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New("", "a2V5", "", "logs")
	assert.Error(t, err)

	_, err = New("account", "", "", "logs")
	assert.Error(t, err)

	_, err = New("account", "a2V5", "", "")
	assert.Error(t, err)

	_, err = New("account", "not base64!", "", "logs")
	assert.Error(t, err)

	c, err := New("account", "a2V5", "", "wad-iis-logfiles")
	require.NoError(t, err)
	assert.Equal(t, "wad-iis-logfiles", c.Name())
	assert.Equal(t, "https://account.blob.core.windows.net/", c.Endpoint())
}

func TestToRemoteObject(t *testing.T) {
	name := "WAD/dep1/role/inst/W3SVC1/u_ex1.log"
	size := int64(4096)
	lmt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	obj := toRemoteObject(&container.BlobItem{
		Name: &name,
		Properties: &container.BlobProperties{
			ContentLength: &size,
			LastModified:  &lmt,
		},
	})

	assert.Equal(t, models.RemoteObject{Key: name, Size: size, LastModified: lmt.UTC()}, obj)

	bare := toRemoteObject(&container.BlobItem{Name: &name})
	assert.Equal(t, name, bare.Key)
	assert.Zero(t, bare.Size)
}

// Integration test against a real account or an Azurite emulator.
// Set AZURE_INTEGRATION_TEST=true plus TEST_AZURE_ACCOUNT, TEST_AZURE_KEY,
// TEST_AZURE_CONTAINER and optionally TEST_AZURE_ENDPOINT.
func TestDownloadOptionsSingleStream(t *testing.T) {
	first := downloadOptions()
	assert.Equal(t, uint16(1), first.Concurrency)

	first.BlockSize = 42
	assert.Zero(t, downloadOptions().BlockSize, "each download gets its own options")
}

func TestListAndDownload(t *testing.T) {
	if os.Getenv("AZURE_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set AZURE_INTEGRATION_TEST=true to run")
	}

	client, err := New(
		os.Getenv("TEST_AZURE_ACCOUNT"),
		os.Getenv("TEST_AZURE_KEY"),
		os.Getenv("TEST_AZURE_ENDPOINT"),
		os.Getenv("TEST_AZURE_CONTAINER"),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var first *models.RemoteObject
	err = client.List(ctx, "", func(obj models.RemoteObject) error {
		if first == nil && obj.Size > 0 {
			first = &obj
		}
		return nil
	})
	require.NoError(t, err)

	if first == nil {
		t.Skip("container has no non-empty blobs")
	}

	localPath := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, client.Download(ctx, first.Key, localPath))

	info, err := os.Stat(localPath)
	require.NoError(t, err)
	assert.Equal(t, first.Size, info.Size())
}
