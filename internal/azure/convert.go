package azure

import (
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"

	"github.com/yairfalse/ahub/pkg/types"
)

// FromARM converts the provider's VM document into a VirtualMachine
func FromARM(vm *armcompute.VirtualMachine) (*types.VirtualMachine, error) {
	out := &types.VirtualMachine{
		ID:       toValue(vm.ID),
		Name:     toValue(vm.Name),
		Location: toValue(vm.Location),
	}

	if out.ID != "" {
		id, err := arm.ParseResourceID(out.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid resource ID for %s: %w", out.Name, err)
		}
		out.ResourceGroup = id.ResourceGroupName
	}

	for _, zone := range vm.Zones {
		if zone != nil {
			out.Zones = append(out.Zones, *zone)
		}
	}
	if len(vm.Tags) > 0 {
		out.Tags = make(map[string]string, len(vm.Tags))
		for k, v := range vm.Tags {
			out.Tags[k] = toValue(v)
		}
	}

	if props := vm.Properties; props != nil {
		out.LicenseType = toValue(props.LicenseType)

		if props.HardwareProfile != nil && props.HardwareProfile.VMSize != nil {
			out.Size = string(*props.HardwareProfile.VMSize)
		}

		if storage := props.StorageProfile; storage != nil {
			if osDisk := storage.OSDisk; osDisk != nil {
				out.OSDisk = types.DiskReference{
					Name:         toValue(osDisk.Name),
					Caching:      types.CachingMode(toValue(osDisk.Caching)),
					SizeGB:       toValue(osDisk.DiskSizeGB),
					DeleteWithVM: toValue(osDisk.DeleteOption) == armcompute.DiskDeleteOptionTypesDelete,
				}
				if osDisk.ManagedDisk != nil {
					out.OSDisk.ManagedDiskID = toValue(osDisk.ManagedDisk.ID)
					out.OSDisk.StorageAccountType = string(toValue(osDisk.ManagedDisk.StorageAccountType))
				}
				if osDisk.Vhd != nil {
					out.OSDisk.VHDURI = toValue(osDisk.Vhd.URI)
				}
				out.OSType = types.OSType(toValue(osDisk.OSType))
			}

			for _, disk := range storage.DataDisks {
				if disk == nil {
					continue
				}
				ref := types.DiskReference{
					Name:         toValue(disk.Name),
					Caching:      types.CachingMode(toValue(disk.Caching)),
					SizeGB:       toValue(disk.DiskSizeGB),
					LUN:          toValue(disk.Lun),
					DeleteWithVM: toValue(disk.DeleteOption) == armcompute.DiskDeleteOptionTypesDelete,
				}
				if disk.ManagedDisk != nil {
					ref.ManagedDiskID = toValue(disk.ManagedDisk.ID)
					ref.StorageAccountType = string(toValue(disk.ManagedDisk.StorageAccountType))
				}
				if disk.Vhd != nil {
					ref.VHDURI = toValue(disk.Vhd.URI)
				}
				out.DataDisks = append(out.DataDisks, ref)
			}
		}

		// Older VMs may not report the OS type on the OS disk
		if out.OSType == "" && props.OSProfile != nil {
			switch {
			case props.OSProfile.WindowsConfiguration != nil:
				out.OSType = types.OSTypeWindows
			case props.OSProfile.LinuxConfiguration != nil:
				out.OSType = types.OSTypeLinux
			}
		}

		if network := props.NetworkProfile; network != nil {
			for _, nic := range network.NetworkInterfaces {
				if nic == nil {
					continue
				}
				ref := types.NetworkInterfaceReference{ID: toValue(nic.ID)}
				if nic.Properties != nil {
					ref.Primary = toValue(nic.Properties.Primary)
					ref.DeleteWithVM = toValue(nic.Properties.DeleteOption) == armcompute.DeleteOptionsDelete
				}
				out.NetworkInterfaces = append(out.NetworkInterfaces, ref)
			}
		}

		if props.AvailabilitySet != nil {
			out.AvailabilitySetID = toValue(props.AvailabilitySet.ID)
		}

		if diag := props.DiagnosticsProfile; diag != nil && diag.BootDiagnostics != nil {
			out.BootDiagnostics = &types.BootDiagnostics{
				Enabled:    toValue(diag.BootDiagnostics.Enabled),
				StorageURI: toValue(diag.BootDiagnostics.StorageURI),
			}
		}
	}

	raw, err := json.Marshal(vm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider document for %s: %w", out.Name, err)
	}
	out.Raw = raw

	return out, nil
}

// ToARM converts a CreateSpec into the document submitted to create the VM.
// Every disk is attached, never created, and nothing is deleted with the VM.
func ToARM(spec *types.CreateSpec) armcompute.VirtualMachine {
	osDisk := spec.OSDisk()
	storage := &armcompute.StorageProfile{
		OSDisk: &armcompute.OSDisk{
			CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesAttach),
			OSType:       to.Ptr(armcompute.OperatingSystemTypes(spec.OSType())),
			DeleteOption: to.Ptr(armcompute.DiskDeleteOptionTypesDetach),
		},
	}
	applyOSDisk(storage.OSDisk, osDisk.DiskReference)

	for _, disk := range spec.DataDisks() {
		storage.DataDisks = append(storage.DataDisks, dataDiskToARM(disk.DiskReference))
	}

	props := &armcompute.VirtualMachineProperties{
		HardwareProfile: &armcompute.HardwareProfile{
			VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(spec.Size())),
		},
		StorageProfile: storage,
	}

	if lt := spec.LicenseType(); lt != "" {
		props.LicenseType = to.Ptr(lt)
	}

	if nics := spec.NetworkInterfaces(); len(nics) > 0 {
		props.NetworkProfile = &armcompute.NetworkProfile{}
		for _, nic := range nics {
			props.NetworkProfile.NetworkInterfaces = append(props.NetworkProfile.NetworkInterfaces, &armcompute.NetworkInterfaceReference{
				ID: to.Ptr(nic.ID),
				Properties: &armcompute.NetworkInterfaceReferenceProperties{
					Primary:      to.Ptr(nic.Primary),
					DeleteOption: to.Ptr(armcompute.DeleteOptionsDetach),
				},
			})
		}
	}

	if id := spec.AvailabilitySetID(); id != "" {
		props.AvailabilitySet = &armcompute.SubResource{ID: to.Ptr(id)}
	}

	if diag := spec.BootDiagnostics(); diag != nil {
		boot := &armcompute.BootDiagnostics{Enabled: to.Ptr(diag.Enabled)}
		if diag.StorageURI != "" {
			boot.StorageURI = to.Ptr(diag.StorageURI)
		}
		props.DiagnosticsProfile = &armcompute.DiagnosticsProfile{BootDiagnostics: boot}
	}

	vm := armcompute.VirtualMachine{
		Location:   to.Ptr(spec.Location()),
		Properties: props,
	}

	if zones := spec.Zones(); len(zones) > 0 {
		vm.Zones = to.SliceOfPtrs(zones...)
	}
	if tags := spec.Tags(); len(tags) > 0 {
		vm.Tags = make(map[string]*string, len(tags))
		for k, v := range tags {
			vm.Tags[k] = to.Ptr(v)
		}
	}

	return vm
}

func applyOSDisk(disk *armcompute.OSDisk, ref types.DiskReference) {
	if ref.Name != "" {
		disk.Name = to.Ptr(ref.Name)
	}
	if ref.Caching != "" {
		disk.Caching = to.Ptr(armcompute.CachingTypes(ref.Caching))
	}
	if ref.IsManaged() {
		disk.ManagedDisk = &armcompute.ManagedDiskParameters{ID: to.Ptr(ref.ManagedDiskID)}
	} else {
		disk.Vhd = &armcompute.VirtualHardDisk{URI: to.Ptr(ref.VHDURI)}
	}
}

func dataDiskToARM(ref types.DiskReference) *armcompute.DataDisk {
	disk := &armcompute.DataDisk{
		CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesAttach),
		Lun:          to.Ptr(ref.LUN),
		DeleteOption: to.Ptr(armcompute.DiskDeleteOptionTypesDetach),
	}
	if ref.Name != "" {
		disk.Name = to.Ptr(ref.Name)
	}
	if ref.Caching != "" {
		disk.Caching = to.Ptr(armcompute.CachingTypes(ref.Caching))
	}
	if ref.SizeGB > 0 {
		disk.DiskSizeGB = to.Ptr(ref.SizeGB)
	}
	if ref.IsManaged() {
		disk.ManagedDisk = &armcompute.ManagedDiskParameters{ID: to.Ptr(ref.ManagedDiskID)}
	} else {
		disk.Vhd = &armcompute.VirtualHardDisk{URI: to.Ptr(ref.VHDURI)}
	}
	return disk
}

// KeepOnDeleteUpdate builds the update that sets every disk and network
// interface of vm to the Detach delete option. It starts from the provider
// document so the disk and NIC lists are sent back unchanged otherwise.
func KeepOnDeleteUpdate(vm *types.VirtualMachine) (armcompute.VirtualMachineUpdate, error) {
	if len(vm.Raw) == 0 {
		return armcompute.VirtualMachineUpdate{}, fmt.Errorf("virtual machine %s has no provider document", vm.Name)
	}

	var current armcompute.VirtualMachine
	if err := json.Unmarshal(vm.Raw, &current); err != nil {
		return armcompute.VirtualMachineUpdate{}, fmt.Errorf("failed to decode provider document of %s: %w", vm.Name, err)
	}

	props := current.Properties
	if props == nil || props.StorageProfile == nil || props.StorageProfile.OSDisk == nil {
		return armcompute.VirtualMachineUpdate{}, fmt.Errorf("provider document of %s has no storage profile", vm.Name)
	}

	props.StorageProfile.OSDisk.DeleteOption = to.Ptr(armcompute.DiskDeleteOptionTypesDetach)
	for _, disk := range props.StorageProfile.DataDisks {
		if disk != nil {
			disk.DeleteOption = to.Ptr(armcompute.DiskDeleteOptionTypesDetach)
		}
	}
	if props.NetworkProfile != nil {
		for _, nic := range props.NetworkProfile.NetworkInterfaces {
			if nic == nil {
				continue
			}
			if nic.Properties == nil {
				nic.Properties = &armcompute.NetworkInterfaceReferenceProperties{}
			}
			nic.Properties.DeleteOption = to.Ptr(armcompute.DeleteOptionsDetach)
		}
	}

	// read-only
	props.InstanceView = nil
	props.ProvisioningState = nil

	return armcompute.VirtualMachineUpdate{Properties: props}, nil
}
