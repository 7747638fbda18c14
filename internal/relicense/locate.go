package relicense

import (
	"context"
	"fmt"
	"strings"

	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/pkg/types"
)

// locate finds exactly one VM named name and reads its power state
func (o *Orchestrator) locate(ctx context.Context, name string) (*types.VirtualMachine, types.PowerState, error) {
	found, err := o.compute.FindByName(ctx, name)
	if err != nil {
		return nil, "", ahuberrors.ProviderError(name, "failed to look up virtual machines", err)
	}

	var matches []*types.VirtualMachine
	for _, vm := range found {
		if o.opts.ResourceGroup != "" && !strings.EqualFold(vm.ResourceGroup, o.opts.ResourceGroup) {
			continue
		}
		matches = append(matches, vm)
	}

	switch len(matches) {
	case 0:
		return nil, "", ahuberrors.NotFoundError(name)
	case 1:
	default:
		ids := make([]string, 0, len(matches))
		for _, vm := range matches {
			ids = append(ids, vm.ID)
		}
		return nil, "", ahuberrors.AmbiguousNameError(name, ids)
	}

	vm := matches[0]
	power, err := o.compute.PowerState(ctx, vm.ResourceGroup, vm.Name)
	if err != nil {
		return nil, "", ahuberrors.ProviderError(vm.Name, "failed to read power state", err)
	}
	return vm, power, nil
}

// checkPreconditions rejects VMs that cannot or need not be switched
func checkPreconditions(vm *types.VirtualMachine, mode types.LicenseMode) error {
	if vm.OSType != types.OSTypeWindows {
		osType := string(vm.OSType)
		if osType == "" {
			osType = "an unknown OS"
		}
		return ahuberrors.UnsupportedGuestError(vm.Name, osType)
	}

	if vm.LicenseMode() == mode {
		return ahuberrors.NoOpError(vm.Name, mode.String())
	}

	if err := vm.Validate(); err != nil {
		return ahuberrors.ValidationError(vm.Name,
			fmt.Sprintf("virtual machine %q cannot be recreated from its disks", vm.Name)).
			WithCause(err.Error())
	}

	return nil
}
