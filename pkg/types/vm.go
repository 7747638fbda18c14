package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// OSType is the guest operating system family of a virtual machine
type OSType string

const (
	OSTypeWindows OSType = "Windows"
	OSTypeLinux   OSType = "Linux"
)

// CachingMode is the host caching setting of an attached disk
type CachingMode string

const (
	CachingNone      CachingMode = "None"
	CachingReadOnly  CachingMode = "ReadOnly"
	CachingReadWrite CachingMode = "ReadWrite"
)

// DiskReference identifies an existing disk either by managed disk ID or by VHD URI
type DiskReference struct {
	Name               string      `json:"name" yaml:"name"`
	ManagedDiskID      string      `json:"managed_disk_id,omitempty" yaml:"managed_disk_id,omitempty"`
	VHDURI             string      `json:"vhd_uri,omitempty" yaml:"vhd_uri,omitempty"`
	Caching            CachingMode `json:"caching,omitempty" yaml:"caching,omitempty"`
	SizeGB             int32       `json:"size_gb,omitempty" yaml:"size_gb,omitempty"`
	StorageAccountType string      `json:"storage_account_type,omitempty" yaml:"storage_account_type,omitempty"`
	LUN                int32       `json:"lun" yaml:"lun"`
	// DeleteWithVM is set when the provider removes the disk together with the VM
	DeleteWithVM bool `json:"delete_with_vm,omitempty" yaml:"delete_with_vm,omitempty"`
}

// IsManaged returns true if the disk is a managed disk
func (d DiskReference) IsManaged() bool {
	return d.ManagedDiskID != ""
}

// Validate checks that the reference points at a disk
func (d DiskReference) Validate() error {
	if d.ManagedDiskID == "" && d.VHDURI == "" {
		return fmt.Errorf("disk %q has neither a managed disk ID nor a VHD URI", d.Name)
	}
	if d.ManagedDiskID == "" && strings.TrimSpace(d.Name) == "" {
		return errors.New("unmanaged disk requires a name")
	}
	return nil
}

// NetworkInterfaceReference points at an existing network interface
type NetworkInterfaceReference struct {
	ID      string `json:"id" yaml:"id"`
	Primary bool   `json:"primary,omitempty" yaml:"primary,omitempty"`

	DeleteWithVM bool `json:"delete_with_vm,omitempty" yaml:"delete_with_vm,omitempty"`
}

// BootDiagnostics mirrors the VM boot diagnostics settings
type BootDiagnostics struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	StorageURI string `json:"storage_uri,omitempty" yaml:"storage_uri,omitempty"`
}

// VirtualMachine is the provider's full representation of a VM as read before any change
type VirtualMachine struct {
	ID                string                      `json:"id" yaml:"id"`
	Name              string                      `json:"name" yaml:"name"`
	ResourceGroup     string                      `json:"resource_group" yaml:"resource_group"`
	Location          string                      `json:"location" yaml:"location"`
	Size              string                      `json:"size" yaml:"size"`
	OSType            OSType                      `json:"os_type" yaml:"os_type"`
	LicenseType       string                      `json:"license_type,omitempty" yaml:"license_type,omitempty"`
	OSDisk            DiskReference               `json:"os_disk" yaml:"os_disk"`
	DataDisks         []DiskReference             `json:"data_disks,omitempty" yaml:"data_disks,omitempty"`
	NetworkInterfaces []NetworkInterfaceReference `json:"network_interfaces,omitempty" yaml:"network_interfaces,omitempty"`
	AvailabilitySetID string                      `json:"availability_set_id,omitempty" yaml:"availability_set_id,omitempty"`
	Zones             []string                    `json:"zones,omitempty" yaml:"zones,omitempty"`
	Tags              map[string]string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	BootDiagnostics   *BootDiagnostics            `json:"boot_diagnostics,omitempty" yaml:"boot_diagnostics,omitempty"`

	// Raw is the untouched provider document
	Raw json.RawMessage `json:"raw,omitempty" yaml:"-"`
}

// Validate checks if the VirtualMachine has the fields needed to rebuild it
func (vm *VirtualMachine) Validate() error {
	if strings.TrimSpace(vm.Name) == "" {
		return errors.New("virtual machine name is required")
	}
	if strings.TrimSpace(vm.ResourceGroup) == "" {
		return errors.New("virtual machine resource group is required")
	}
	if strings.TrimSpace(vm.Location) == "" {
		return errors.New("virtual machine location is required")
	}
	if err := vm.OSDisk.Validate(); err != nil {
		return fmt.Errorf("os disk: %w", err)
	}
	for _, disk := range vm.DataDisks {
		if err := disk.Validate(); err != nil {
			return fmt.Errorf("data disk lun %d: %w", disk.LUN, err)
		}
	}
	return nil
}

// DeletedWithVM lists the disks and network interfaces the provider would
// remove together with the VM
func (vm *VirtualMachine) DeletedWithVM() []string {
	var names []string
	if vm.OSDisk.DeleteWithVM {
		names = append(names, vm.OSDisk.Name)
	}
	for _, disk := range vm.DataDisks {
		if disk.DeleteWithVM {
			names = append(names, disk.Name)
		}
	}
	for _, nic := range vm.NetworkInterfaces {
		if nic.DeleteWithVM {
			names = append(names, nic.ID)
		}
	}
	return names
}

// LicenseMode returns the licensing mode the VM is currently in
func (vm *VirtualMachine) LicenseMode() LicenseMode {
	return ModeOf(vm.LicenseType)
}
