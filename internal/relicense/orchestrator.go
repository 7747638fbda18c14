// Package relicense switches a Windows VM between Hybrid Use Benefit and
// standard licensing by deleting it and recreating it from its own disks.
package relicense

import (
	"context"
	"strings"

	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/logger"
	"github.com/yairfalse/ahub/pkg/types"
)

// Compute is the subset of the compute API a run needs
type Compute interface {
	FindByName(ctx context.Context, name string) ([]*types.VirtualMachine, error)
	PowerState(ctx context.Context, resourceGroup, name string) (types.PowerState, error)
	// PowerOff stops the VM and keeps it provisioned
	PowerOff(ctx context.Context, resourceGroup, name string) error
	Deallocate(ctx context.Context, resourceGroup, name string) error
	Delete(ctx context.Context, resourceGroup, name string) error
	Create(ctx context.Context, resourceGroup string, spec *types.CreateSpec) error
	// KeepOnDelete sets every disk and network interface of vm to survive
	// deletion of the VM
	KeepOnDelete(ctx context.Context, vm *types.VirtualMachine) error
}

// BackupWriter persists the full VM description and returns where it went
type BackupWriter interface {
	Write(ctx context.Context, vm *types.VirtualMachine) (string, error)
}

// Options configures an Orchestrator
type Options struct {
	// HybridMarker is the license type submitted for hybrid mode
	HybridMarker string
	// ResourceGroup restricts the name lookup to one resource group
	ResourceGroup string
	// DryRun stops after the new descriptor is built
	DryRun bool
}

// Request asks for one VM to be moved to a license mode
type Request struct {
	VMName string
	Mode   types.LicenseMode
	// Force authorizes stopping a running VM
	Force bool
}

// Result describes how far a run got
type Result struct {
	VMName          string
	ResourceGroup   string
	// State is the last step reached; once the VM is deleted it is the outcome
	State           State
	Transitions     []State
	PreviousLicense string
	AppliedLicense  string
	BackupLocation  string
	OriginalPower   types.PowerState
	Stopped         bool
	PowerRestoreErr error

	// Planned is the descriptor a dry run would have submitted
	Planned *types.CreateSpec
}

func (r *Result) advance(s State) {
	r.State = s
	r.Transitions = append(r.Transitions, s)
}

// record appends a step that follows the outcome without replacing it
func (r *Result) record(s State) {
	r.Transitions = append(r.Transitions, s)
}

// Orchestrator runs the license switch workflow
type Orchestrator struct {
	compute Compute
	backups BackupWriter
	logger  logger.Logger
	opts    Options
}

// New creates an orchestrator
func New(compute Compute, backups BackupWriter, log logger.Logger, opts Options) *Orchestrator {
	if log == nil {
		log = logger.Discard()
	}
	if opts.HybridMarker == "" {
		opts.HybridMarker = types.DefaultHybridMarker
	}
	return &Orchestrator{
		compute: compute,
		backups: backups,
		logger:  log,
		opts:    opts,
	}
}

// Run switches the VM named in req to req.Mode.
//
// Every error returned before the VM is deleted leaves it untouched. After
// deletion the run can end three ways: recreated with the new license (nil
// error), recreated with the old license (RolledBack error) or not recreated
// at all (ReconciliationFailed error). The returned Result is non-nil whenever
// the VM was located.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	name := strings.TrimSpace(req.VMName)
	if name == "" {
		return nil, ahuberrors.ValidationError("", "a virtual machine name is required")
	}
	if req.Mode != types.LicenseHybrid && req.Mode != types.LicenseStandard {
		return nil, ahuberrors.ValidationError(name, "license mode must be hybrid or standard")
	}

	vm, power, err := o.locate(ctx, name)
	if err != nil {
		return nil, err
	}

	result := &Result{
		VMName:          vm.Name,
		ResourceGroup:   vm.ResourceGroup,
		PreviousLicense: vm.LicenseType,
		AppliedLicense:  vm.LicenseType,
		OriginalPower:   power,
	}
	result.advance(StateLocated)

	log := o.logger.WithFields(map[string]interface{}{
		"vm":             vm.Name,
		"resource_group": vm.ResourceGroup,
	})
	log.WithField("state", StateLocated).Info("located virtual machine")

	if err := checkPreconditions(vm, req.Mode); err != nil {
		return result, err
	}
	result.advance(StateValidated)

	needsStop := !power.IsOff()
	if needsStop && !req.Force {
		return result, ahuberrors.ConfirmationRequiredError(vm.Name)
	}

	if o.opts.DryRun {
		state := types.Capture(vm, power, "")
		newSpec, _, err := Rebuild(state, req.Mode, o.opts.HybridMarker)
		if err != nil {
			return result, ahuberrors.ValidationError(vm.Name, err.Error())
		}
		result.Planned = newSpec
		if kept := vm.DeletedWithVM(); len(kept) > 0 {
			log.WithField("resources", strings.Join(kept, ", ")).Info("would switch these resources to detach on delete")
		}
		result.advance(StatePlanned)
		log.WithField("state", StatePlanned).Info("dry run complete; nothing was changed")
		return result, nil
	}

	location, err := o.backups.Write(ctx, vm)
	if err != nil {
		if !ahuberrors.IsType(err, ahuberrors.ErrorTypeBackupWrite) {
			err = ahuberrors.BackupWriteError(vm.Name, "the backup destination", err)
		}
		return result, err
	}
	result.BackupLocation = location
	result.advance(StateBackedUp)
	log = log.WithField("backup", location)
	log.WithField("state", StateBackedUp).Info("backed up virtual machine")

	state := types.Capture(vm, power, location)
	result.advance(StateCaptured)

	// Built before anything destructive so a bad capture aborts here
	newSpec, oldSpec, err := Rebuild(state, req.Mode, o.opts.HybridMarker)
	if err != nil {
		return result, ahuberrors.ValidationError(vm.Name, err.Error()).WithBackup(location)
	}

	if kept := vm.DeletedWithVM(); len(kept) > 0 {
		log.WithField("resources", strings.Join(kept, ", ")).Info("switching disks and network interfaces to detach on delete")
		if err := o.compute.KeepOnDelete(ctx, vm); err != nil {
			return result, ahuberrors.ProviderError(vm.Name,
				"failed to keep disks and network interfaces on delete; nothing was deleted", err).WithBackup(location)
		}
	}

	if needsStop {
		log.WithField("state", StateStopped).WithField("power_state", power).Info("stopping virtual machine")
		if err := o.compute.Deallocate(ctx, vm.ResourceGroup, vm.Name); err != nil {
			return result, ahuberrors.StopFailedError(vm.Name, err).WithBackup(location)
		}
		result.Stopped = true
		result.advance(StateStopped)
	}

	// From here on the VM must end up recreated, so cancellation is ignored
	ctx = context.WithoutCancel(ctx)

	return o.replace(ctx, log, state, newSpec, oldSpec, result)
}

// Preview runs the non-destructive steps for req and returns the plan
func (o *Orchestrator) Preview(ctx context.Context, req Request) (*Result, error) {
	dry := *o
	dry.opts.DryRun = true
	return dry.Run(ctx, req)
}
