package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"

	DefaultContainer   = "wad-iis-logfiles"
	DefaultSMTPPort    = 25
	DefaultConcurrency = 4
)

type Config struct {
	Provider string

	// Azure Blob
	AccountName   string
	AccountKey    string
	BlobEndpoint  string
	ContainerName string

	// S3-compatible storage
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string

	SMTPHost    string
	SMTPPort    int
	ReportEmail string

	Concurrency int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		Provider:      getEnv("STORAGE_PROVIDER", ProviderAzure),
		AccountName:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		AccountKey:    getEnv("AZURE_STORAGE_KEY", ""),
		BlobEndpoint:  getEnv("AZURE_BLOB_ENDPOINT", ""),
		ContainerName: getEnv("CONTAINER_NAME", DefaultContainer),
		ApiURL:        getEnv("API_URL", ""),
		AccessKey:     getEnv("ACCESS_KEY", ""),
		SecretKey:     getEnv("SECRET_KEY", ""),
		BucketName:    getEnv("BUCKET_NAME", ""),
		Region:        getEnv("REGION", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", DefaultSMTPPort),
		ReportEmail:   getEnv("REPORT_EMAIL", ""),
		Concurrency:   getEnvInt("CONCURRENCY", DefaultConcurrency),
	}

	return config, nil
}

// Container returns the container name for the configured provider.
func (c *Config) Container() string {
	return c.ContainerFor(c.Provider)
}

// ContainerFor returns the bucket name for the s3 provider and the blob
// container name otherwise.
func (c *Config) ContainerFor(provider string) string {
	if provider == ProviderS3 && c.BucketName != "" {
		return c.BucketName
	}
	return c.ContainerName
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", value)
		return defaultValue
	}
	return n
}
