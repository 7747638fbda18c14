package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yairfalse/ahub/pkg/types"
)

// Config represents the complete ahub configuration
type Config struct {
	Azure   AzureConfig   `mapstructure:"azure"`
	License LicenseConfig `mapstructure:"license"`
	Backup  BackupConfig  `mapstructure:"backup"`
	Storage StorageConfig `mapstructure:"storage"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AzureConfig selects the subscription to operate on
type AzureConfig struct {
	SubscriptionID string `mapstructure:"subscription_id"`
	TenantID       string `mapstructure:"tenant_id"`
	ResourceGroup  string `mapstructure:"resource_group"`
}

// LicenseConfig contains the license marker written for Hybrid Use Benefit
type LicenseConfig struct {
	HybridMarker string `mapstructure:"hybrid_marker"`
}

// BackupConfig controls where pre-change descriptors are written
type BackupConfig struct {
	Destination string `mapstructure:"destination"`
	Format      string `mapstructure:"format"`
}

// StorageConfig contains credentials for remote backup destinations
type StorageConfig struct {
	Azure AzureStorageConfig `mapstructure:"azure"`
	S3    S3StorageConfig    `mapstructure:"s3"`
	GCS   GCSStorageConfig   `mapstructure:"gcs"`
}

// AzureStorageConfig contains Azure Blob Storage settings
type AzureStorageConfig struct {
	AccountKey string `mapstructure:"account_key"`
}

// S3StorageConfig contains AWS S3 settings
type S3StorageConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// GCSStorageConfig contains Google Cloud Storage settings
type GCSStorageConfig struct {
	Project string `mapstructure:"project"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		License: LicenseConfig{
			HybridMarker: types.DefaultHybridMarker,
		},
		Backup: BackupConfig{
			Destination: "~/.ahub/backups",
			Format:      "json",
		},
		Output: OutputConfig{
			Format:  "table",
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	return LoadWith(viper.GetViper())
}

// LoadWith loads configuration using the given viper instance
func LoadWith(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()
	setDefaults(v, config)

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ahub"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map well-known environment variables to config keys
	v.BindEnv("azure.subscription_id", "AHUB_AZURE_SUBSCRIPTION_ID", "AZURE_SUBSCRIPTION_ID")
	v.BindEnv("azure.tenant_id", "AHUB_AZURE_TENANT_ID", "AZURE_TENANT_ID")
	v.BindEnv("storage.azure.account_key", "AHUB_STORAGE_AZURE_ACCOUNT_KEY", "AZURE_STORAGE_KEY")
	v.BindEnv("storage.s3.region", "AHUB_STORAGE_S3_REGION", "AWS_REGION")
	v.BindEnv("storage.gcs.project", "AHUB_STORAGE_GCS_PROJECT", "GOOGLE_CLOUD_PROJECT")
	v.BindEnv("logging.level", "AHUB_LOGGING_LEVEL", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we'll use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// setDefaults registers every default so env-only keys are picked up by Unmarshal
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("azure.subscription_id", c.Azure.SubscriptionID)
	v.SetDefault("azure.tenant_id", c.Azure.TenantID)
	v.SetDefault("azure.resource_group", c.Azure.ResourceGroup)
	v.SetDefault("license.hybrid_marker", c.License.HybridMarker)
	v.SetDefault("backup.destination", c.Backup.Destination)
	v.SetDefault("backup.format", c.Backup.Format)
	v.SetDefault("storage.azure.account_key", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.profile", "")
	v.SetDefault("storage.gcs.project", "")
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.no_color", c.Output.NoColor)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.file", c.Logging.File)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Azure.SubscriptionID) == "" {
		return fmt.Errorf("azure subscription ID is required (set AZURE_SUBSCRIPTION_ID or azure.subscription_id)")
	}

	if c.Backup.Destination == "" {
		return fmt.Errorf("backup destination is required")
	}

	format, err := NormalizeBackupFormat(c.Backup.Format)
	if err != nil {
		return err
	}
	c.Backup.Format = format

	if strings.TrimSpace(c.License.HybridMarker) == "" {
		return fmt.Errorf("license hybrid marker must not be empty")
	}

	return nil
}

// NormalizeBackupFormat lowercases format and maps yml to yaml; empty means json
func NormalizeBackupFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("unsupported backup format %q (json or yaml)", format)
	}
}

// ExpandPaths expands home directory paths
func (c *Config) ExpandPaths() error {
	var err error
	c.Backup.Destination, err = expandPath(c.Backup.Destination)
	if err != nil {
		return fmt.Errorf("failed to expand backup destination: %w", err)
	}

	c.Logging.File, err = expandPath(c.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to expand log file path: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}
