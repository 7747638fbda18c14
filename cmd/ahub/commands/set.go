package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yairfalse/ahub/internal/backup"
	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/relicense"
	"github.com/yairfalse/ahub/internal/storage"
	"github.com/yairfalse/ahub/pkg/types"
)

func newSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Switch a virtual machine to hybrid or standard licensing",
		Long: `Switch a Windows virtual machine between Azure Hybrid Use Benefit and
standard licensing.

The VM description is backed up first. The VM is then stopped (only with
--force when it is running), deleted with its disks and network interfaces
kept, and recreated from the same disks with the new license. If the
recreation fails, the VM is recreated with its original license instead.
Its original power state is restored at the end.`,
		Example: `  # Move a stopped VM to Hybrid Use Benefit
  ahub set --vm web01 --mode hybrid

  # Stop a running VM and move it back to standard licensing
  ahub set --vm db02 --mode standard --force

  # Show what would be submitted without changing anything
  ahub set --vm web01 --mode hybrid --dry-run --output yaml

  # Keep the backup in Azure Blob Storage
  ahub set --vm web01 --mode hybrid --backup-dest azurerm://backupsacct/ahub`,
		Args: cobra.NoArgs,
		RunE: runSet,
	}

	cmd.Flags().String("vm", "", "name of the virtual machine (required)")
	cmd.Flags().String("mode", "", "target license mode: hybrid or standard (required)")
	cmd.Flags().Bool("force", false, "stop the VM if it is running")
	cmd.Flags().StringP("resource-group", "g", "", "resource group of the VM, when the name is not unique")
	cmd.Flags().Bool("dry-run", false, "build the new VM description without changing anything")
	cmd.Flags().String("backup-dest", "", "backup destination: directory, azurerm://, s3:// or gs:// URL")
	cmd.Flags().String("backup-format", "", "backup format: json or yaml")

	cmd.MarkFlagRequired("vm")
	cmd.MarkFlagRequired("mode")

	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	vmName, _ := cmd.Flags().GetString("vm")
	modeFlag, _ := cmd.Flags().GetString("mode")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	mode, err := types.ParseLicenseMode(modeFlag)
	if err != nil {
		return ahuberrors.ValidationError(vmName, err.Error())
	}

	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	applySetOverrides(cmd)

	if _, err := storage.ParseDestination(cfg.Backup.Destination); err != nil {
		return ahuberrors.ConfigurationError("invalid backup destination", err)
	}

	baseLog, closeLog, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	client, cred, err := newAzureClient(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return ahuberrors.ConfigurationError("invalid configuration", err)
	}

	operationID := uuid.New().String()
	log := baseLog.WithField("operation_id", operationID)

	// Interrupts are honored until the VM is deleted
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := relicense.Options{
		HybridMarker:  cfg.License.HybridMarker,
		ResourceGroup: cfg.Azure.ResourceGroup,
	}
	req := relicense.Request{VMName: vmName, Mode: mode, Force: force}

	var result *relicense.Result
	if dryRun {
		log.Info("dry run; no backup is written and nothing is changed")
		result, err = relicense.New(client, nil, log, opts).Preview(ctx, req)
	} else {
		backend, openErr := storage.Open(ctx, cfg.Backup.Destination, storageOptions(cred))
		if openErr != nil {
			return ahuberrors.BackupWriteError(vmName, cfg.Backup.Destination, openErr)
		}
		defer backend.Close()

		writer, writerErr := backup.NewWriter(backend, backup.Options{
			Format:      cfg.Backup.Format,
			OperationID: operationID,
		})
		if writerErr != nil {
			return ahuberrors.ConfigurationError("invalid backup format", writerErr)
		}

		result, err = relicense.New(client, writer, log, opts).Run(ctx, req)
	}

	if result != nil && result.State.Terminal() {
		if fmtErr := formatter.FormatResult(result, cmd.OutOrStdout()); fmtErr != nil {
			log.Error("failed to render result", fmtErr)
		}
	}
	if err != nil {
		return err
	}

	if result.PowerRestoreErr != nil {
		ahuberrors.DisplayWarning(cmd.ErrOrStderr(),
			fmt.Sprintf("%s was recreated but its power state could not be restored: %v", result.VMName, result.PowerRestoreErr))
	}
	if !dryRun {
		ahuberrors.DisplaySuccess(cmd.ErrOrStderr(),
			fmt.Sprintf("%s now runs with %s licensing", result.VMName, mode))
	}
	return nil
}

// applySetOverrides lets the set flags take precedence over config
func applySetOverrides(cmd *cobra.Command) {
	if rg, _ := cmd.Flags().GetString("resource-group"); rg != "" {
		cfg.Azure.ResourceGroup = rg
	}
	if dest, _ := cmd.Flags().GetString("backup-dest"); dest != "" {
		cfg.Backup.Destination = dest
	}
	if format, _ := cmd.Flags().GetString("backup-format"); format != "" {
		cfg.Backup.Format = format
	}
}
