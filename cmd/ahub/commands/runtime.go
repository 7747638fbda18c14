package commands

import (
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/spf13/cobra"

	"github.com/yairfalse/ahub/internal/azure"
	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/logger"
	"github.com/yairfalse/ahub/internal/output"
	"github.com/yairfalse/ahub/internal/storage"
	"github.com/yairfalse/ahub/pkg/config"
)

// newLogger builds the command logger from config. The returned func closes
// the log file, if one is configured.
func newLogger(cmd *cobra.Command) (logger.Logger, func(), error) {
	opts := logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		opts.Level = "debug"
		opts.Format = "json"
	}

	closer := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, ahuberrors.ConfigurationError("failed to open log file "+cfg.Logging.File, err)
		}
		opts.Output = f
		closer = func() { f.Close() }
	}

	log, err := logger.New(opts)
	if err != nil {
		closer()
		return nil, nil, ahuberrors.ConfigurationError("invalid logging configuration", err)
	}
	return log, closer, nil
}

// newAzureClient resolves the subscription and returns a compute client and
// the credential behind it
func newAzureClient(cmd *cobra.Command) (*azure.Client, azcore.TokenCredential, error) {
	if cfg.FillFromCLI(cmd.Context(), config.NewSubscriptionDetector()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using subscription %s from az CLI\n", cfg.Azure.SubscriptionID)
	}
	if cfg.Azure.SubscriptionID == "" {
		return nil, nil, ahuberrors.ConfigurationError("no Azure subscription selected",
			fmt.Errorf("set AZURE_SUBSCRIPTION_ID, azure.subscription_id or --subscription, or run 'az login'"))
	}

	cred, err := azure.NewCredential(cfg.Azure.TenantID)
	if err != nil {
		return nil, nil, ahuberrors.ConfigurationError("failed to obtain Azure credentials", err)
	}

	client, err := azure.NewClient(cfg.Azure.SubscriptionID, cred)
	if err != nil {
		return nil, nil, ahuberrors.ConfigurationError("failed to create Azure compute client", err)
	}
	return client, cred, nil
}

// storageOptions maps the storage config onto backend options
func storageOptions(cred azcore.TokenCredential) storage.Options {
	return storage.Options{
		AzureAccountKey: cfg.Storage.Azure.AccountKey,
		AzureCredential: cred,
		S3Region:        cfg.Storage.S3.Region,
		S3Profile:       cfg.Storage.S3.Profile,
		GCSProject:      cfg.Storage.GCS.Project,
	}
}

func newFormatter() (output.Formatter, error) {
	formatter, err := output.NewFormatter(cfg.Output.Format)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return formatter, nil
}
