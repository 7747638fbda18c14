package relicense

import (
	"context"
	"sort"
	"strings"

	"github.com/yairfalse/ahub/pkg/types"
)

// Lister enumerates VMs and reads their power state
type Lister interface {
	List(ctx context.Context) ([]*types.VirtualMachine, error)
	PowerState(ctx context.Context, resourceGroup, name string) (types.PowerState, error)
}

// VMSummary is one row of the VM listing
type VMSummary struct {
	Name          string            `json:"name" yaml:"name"`
	ResourceGroup string            `json:"resource_group" yaml:"resource_group"`
	Location      string            `json:"location" yaml:"location"`
	Size          string            `json:"size" yaml:"size"`
	OSType        types.OSType      `json:"os_type" yaml:"os_type"`
	LicenseType   string            `json:"license_type,omitempty" yaml:"license_type,omitempty"`
	License       types.LicenseMode `json:"license" yaml:"license"`
	PowerState    types.PowerState  `json:"power_state" yaml:"power_state"`
}

// List returns every VM, optionally restricted to one resource group,
// sorted by resource group and name. A VM whose power state cannot be read
// is listed as unknown.
func List(ctx context.Context, lister Lister, resourceGroup string) ([]VMSummary, error) {
	vms, err := lister.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]VMSummary, 0, len(vms))
	for _, vm := range vms {
		if resourceGroup != "" && !strings.EqualFold(vm.ResourceGroup, resourceGroup) {
			continue
		}

		power, err := lister.PowerState(ctx, vm.ResourceGroup, vm.Name)
		if err != nil {
			power = types.PowerUnknown
		}

		summaries = append(summaries, VMSummary{
			Name:          vm.Name,
			ResourceGroup: vm.ResourceGroup,
			Location:      vm.Location,
			Size:          vm.Size,
			OSType:        vm.OSType,
			LicenseType:   vm.LicenseType,
			License:       vm.LicenseMode(),
			PowerState:    power,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := strings.ToLower(summaries[i].ResourceGroup), strings.ToLower(summaries[j].ResourceGroup)
		if a != b {
			return a < b
		}
		return strings.ToLower(summaries[i].Name) < strings.ToLower(summaries[j].Name)
	})

	return summaries, nil
}
