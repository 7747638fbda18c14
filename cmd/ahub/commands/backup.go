package commands

import (
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/spf13/cobra"

	"github.com/yairfalse/ahub/internal/azure"
	"github.com/yairfalse/ahub/internal/backup"
	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/storage"
)

func newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect VM backups written before a license switch",
	}

	cmd.AddCommand(newBackupShowCommand())

	return cmd
}

func newBackupShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show LOCATION",
		Short: "Print a stored VM backup",
		Long: `Print the VM description stored at LOCATION, as reported by 'ahub set'.

LOCATION is a file path or an azurerm://, s3:// or gs:// URL. Use
--output json or --output yaml to print the full provider document.`,
		Example: `  ahub backup show ~/.ahub/backups/web01/web01-20240101T000000Z.json
  ahub backup show s3://ahub-backups/web01/web01-20240101T000000Z.json --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runBackupShow,
	}
}

func runBackupShow(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	location := args[0]
	d, err := storage.ParseDestination(location)
	if err != nil {
		return usageError("invalid backup location: %v", err)
	}

	var cred azcore.TokenCredential
	if d.Scheme == storage.SchemeAzure && cfg.Storage.Azure.AccountKey == "" {
		cred, err = azure.NewCredential(cfg.Azure.TenantID)
		if err != nil {
			return ahuberrors.ConfigurationError("failed to obtain Azure credentials", err)
		}
	}

	env, err := backup.Read(cmd.Context(), location, storageOptions(cred))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ahuberrors.New(ahuberrors.ErrorTypeNotFound, "", "no backup at "+location)
		}
		return fmt.Errorf("failed to read backup %s: %w", location, err)
	}

	return formatter.FormatBackup(env, cmd.OutOrStdout())
}
