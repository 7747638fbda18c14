package relicense

import (
	"context"

	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/logger"
	"github.com/yairfalse/ahub/pkg/types"
)

// replace deletes the VM, recreates it and restores its power state
func (o *Orchestrator) replace(ctx context.Context, log logger.Logger, state types.CapturedState, newSpec, oldSpec *types.CreateSpec, result *Result) (*Result, error) {
	rg := state.ResourceGroup

	log.WithField("state", StateDestroyed).Info("deleting virtual machine; disks and network interfaces are kept")
	if err := o.compute.Delete(ctx, rg, state.VMName); err != nil {
		log.Error("failed to delete virtual machine", err)
		return result, ahuberrors.DeletionFailedError(state.VMName, state.BackupLocation, err)
	}
	result.advance(StateDestroyed)

	result.advance(StateRecreating)
	log.WithFields(map[string]interface{}{
		"state":        StateRecreating,
		"license_type": newSpec.LicenseType(),
	}).Info("recreating virtual machine")

	var outcome error
	primaryErr := o.compute.Create(ctx, rg, newSpec)
	if primaryErr == nil {
		result.AppliedLicense = newSpec.LicenseType()
		result.advance(StateRecreated)
		log.WithField("state", StateRecreated).Info("recreated virtual machine with the new license")
	} else {
		log.WithField("error", primaryErr.Error()).Warn("recreation with the new license failed; recreating with the previous license")

		if rollbackErr := o.compute.Create(ctx, rg, oldSpec); rollbackErr != nil {
			result.advance(StateReconciliationFailed)
			log.WithField("state", StateReconciliationFailed).Error("rollback failed; virtual machine is deleted", rollbackErr)
			return result, ahuberrors.ReconciliationFailedError(state.VMName, state.BackupLocation, primaryErr, rollbackErr)
		}

		result.AppliedLicense = oldSpec.LicenseType()
		result.advance(StateRolledBack)
		log.WithField("state", StateRolledBack).Warn("recreated virtual machine with its previous license")
		outcome = ahuberrors.RolledBackError(state.VMName, state.BackupLocation, primaryErr)
	}

	if err := o.restorePower(ctx, state); err != nil {
		result.PowerRestoreErr = err
		log.WithFields(map[string]interface{}{
			"power_state": state.PowerState,
			"error":       err.Error(),
		}).Warn("failed to restore power state")
	} else {
		result.record(StatePowerRestored)
	}

	return result, outcome
}

// restorePower puts the recreated VM back in its captured power state.
// A freshly created VM is running, so running VMs need nothing.
func (o *Orchestrator) restorePower(ctx context.Context, state types.CapturedState) error {
	switch state.PowerState {
	case types.PowerDeallocated:
		return o.compute.Deallocate(ctx, state.ResourceGroup, state.VMName)
	case types.PowerStopped:
		return o.compute.PowerOff(ctx, state.ResourceGroup, state.VMName)
	default:
		return nil
	}
}
