package errors

import (
	"fmt"
	"strings"
)

// NotFoundError reports that no VM carries the requested name
func NotFoundError(vmName string) *AHUBError {
	err := New(ErrorTypeNotFound, vmName, fmt.Sprintf("virtual machine %q not found", vmName))
	err.WithSolutions(
		"Check the VM name for typos",
		"Make sure the right subscription is selected (AZURE_SUBSCRIPTION_ID)",
	)
	err.WithVerify("ahub list")
	return err
}

// AmbiguousNameError reports that several VMs carry the requested name
func AmbiguousNameError(vmName string, ids []string) *AHUBError {
	err := New(ErrorTypeAmbiguousName, vmName,
		fmt.Sprintf("virtual machine name %q matches %d VMs", vmName, len(ids)))
	err.WithCause(strings.Join(ids, ", "))
	err.WithSolutions("Pass --resource-group to select exactly one VM")
	err.WithVerify("ahub list")
	return err
}

// UnsupportedGuestError reports a VM whose OS cannot use Hybrid Use Benefit
func UnsupportedGuestError(vmName string, osType string) *AHUBError {
	err := New(ErrorTypeUnsupportedGuest, vmName,
		fmt.Sprintf("virtual machine %q runs %s; only Windows guests can switch license mode", vmName, osType))
	return err
}

// NoOpError reports that the VM is already in the requested mode
func NoOpError(vmName string, mode string) *AHUBError {
	return New(ErrorTypeNoOp, vmName,
		fmt.Sprintf("virtual machine %q is already in %s license mode", vmName, mode))
}

// ConfirmationRequiredError reports a running VM without --force
func ConfirmationRequiredError(vmName string) *AHUBError {
	err := New(ErrorTypeConfirmationRequired, vmName,
		fmt.Sprintf("virtual machine %q is running; it must be stopped before it can be recreated", vmName))
	err.WithSolutions(
		"Stop the VM yourself and run the command again",
		"Re-run with --force to let ahub stop the VM",
	)
	err.WithHelp("ahub set --help")
	return err
}

// BackupWriteError reports that the pre-change descriptor could not be persisted
func BackupWriteError(vmName string, destination string, cause error) *AHUBError {
	err := Wrap(ErrorTypeBackupWrite, vmName, cause,
		fmt.Sprintf("failed to back up virtual machine %q to %s; nothing was changed", vmName, destination))
	err.WithSolutions(
		"Check that the backup destination is writable",
		"Set backup.destination or pass --backup-dest",
	)
	return err
}

// StopFailedError reports that the VM could not be stopped before deletion
func StopFailedError(vmName string, cause error) *AHUBError {
	err := Wrap(ErrorTypeStopFailed, vmName, cause,
		fmt.Sprintf("failed to stop virtual machine %q; it was not deleted", vmName))
	err.WithVerify(fmt.Sprintf("az vm get-instance-view --name %s --query instanceView.statuses", vmName))
	return err
}

// DeletionFailedError reports a failed delete; the VM may be partially deleted
func DeletionFailedError(vmName string, backup string, cause error) *AHUBError {
	err := Wrap(ErrorTypeDeletionFailed, vmName, cause,
		fmt.Sprintf("failed to delete virtual machine %q; its state is unknown", vmName))
	err.WithBackup(backup)
	err.WithSolutions(
		"Check in the portal whether the VM still exists",
		"If it is gone, recreate it from the backup with the same disks",
	)
	return err
}

// RolledBackError reports that the new license was rejected and the VM was recreated unchanged
func RolledBackError(vmName string, backup string, cause error) *AHUBError {
	err := Wrap(ErrorTypeRolledBack, vmName, cause,
		fmt.Sprintf("recreating virtual machine %q with the new license failed; it was recreated with its previous license", vmName))
	err.WithBackup(backup)
	return err
}

// ReconciliationFailedError reports that the VM is deleted and neither recreation succeeded
func ReconciliationFailedError(vmName string, backup string, primary, rollback error) *AHUBError {
	err := Wrap(ErrorTypeReconciliationFailed, vmName, rollback,
		fmt.Sprintf("virtual machine %q was deleted and could not be recreated; manual recovery required", vmName))
	err.WithCause(fmt.Sprintf("new license: %v; previous license: %v", primary, rollback))
	err.WithBackup(backup)
	err.WithSolutions(
		fmt.Sprintf("Recreate the VM manually from the backup at %s", backup),
		"Its OS and data disks were not deleted; attach them by ID",
	)
	err.WithVerify(fmt.Sprintf("ahub backup show %s", backup))
	return err
}

// ConfigurationError reports invalid or missing configuration
func ConfigurationError(message string, cause error) *AHUBError {
	err := Wrap(ErrorTypeConfiguration, "", cause, message)
	err.WithHelp("ahub --help")
	return err
}

// ValidationError reports invalid user input
func ValidationError(vmName string, message string) *AHUBError {
	return New(ErrorTypeValidation, vmName, message)
}

// ProviderError reports an Azure API failure outside the destructive steps
func ProviderError(vmName string, message string, cause error) *AHUBError {
	return Wrap(ErrorTypeProvider, vmName, cause, message)
}
