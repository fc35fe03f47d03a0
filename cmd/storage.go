package cmd

import (
	"fmt"

	appConfig "azlogfetch/config"
	"azlogfetch/internal/azblobclient"
	"azlogfetch/internal/s3client"
	"azlogfetch/internal/storage"
)

// openStorage is replaced in tests.
var openStorage = openContainer

type namedContainer interface {
	storage.Container
	Name() string
	Endpoint() string
}

// openContainer builds the backend for provider. account and key override
// the configured credentials when non-empty; for s3 they are the access key
// pair.
func openContainer(base *appConfig.Config, provider, containerName, account, key string) (namedContainer, error) {
	switch provider {
	case "", appConfig.ProviderAzure:
		if account == "" {
			account = base.AccountName
		}
		if key == "" {
			key = base.AccountKey
		}
		client, err := azblobclient.New(account, key, base.BlobEndpoint, containerName)
		if err != nil {
			return nil, err
		}
		return client, nil

	case appConfig.ProviderS3:
		c := *base
		c.BucketName = containerName
		if account != "" {
			c.AccessKey = account
		}
		if key != "" {
			c.SecretKey = key
		}
		client, err := s3client.New(&c)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown storage provider %q (want %s or %s)",
			provider, appConfig.ProviderAzure, appConfig.ProviderS3)
	}
}
