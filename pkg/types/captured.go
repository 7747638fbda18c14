package types

import "time"

// CapturedState is the point-in-time record taken before the VM is deleted.
// It is the only source used to rebuild the VM and must not be modified after Capture.
type CapturedState struct {
	VMName            string
	ResourceGroup     string
	Location          string
	Size              string
	OSType            OSType
	PowerState        PowerState
	LicenseType       string
	OSDisk            DiskReference
	DataDisks         []DiskReference
	NetworkInterfaces []NetworkInterfaceReference
	AvailabilitySetID string
	Zones             []string
	Tags              map[string]string
	BootDiagnostics   *BootDiagnostics
	BackupLocation    string
	CapturedAt        time.Time
}

// Capture copies everything needed to recreate vm
func Capture(vm *VirtualMachine, power PowerState, backupLocation string) CapturedState {
	state := CapturedState{
		VMName:            vm.Name,
		ResourceGroup:     vm.ResourceGroup,
		Location:          vm.Location,
		Size:              vm.Size,
		OSType:            vm.OSType,
		PowerState:        power,
		LicenseType:       vm.LicenseType,
		OSDisk:            vm.OSDisk,
		DataDisks:         append([]DiskReference(nil), vm.DataDisks...),
		NetworkInterfaces: append([]NetworkInterfaceReference(nil), vm.NetworkInterfaces...),
		AvailabilitySetID: vm.AvailabilitySetID,
		Zones:             append([]string(nil), vm.Zones...),
		BackupLocation:    backupLocation,
		CapturedAt:        time.Now().UTC(),
	}
	if vm.Tags != nil {
		state.Tags = make(map[string]string, len(vm.Tags))
		for k, v := range vm.Tags {
			state.Tags[k] = v
		}
	}
	if vm.BootDiagnostics != nil {
		diag := *vm.BootDiagnostics
		state.BootDiagnostics = &diag
	}
	return state
}
