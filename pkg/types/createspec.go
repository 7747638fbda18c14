package types

import (
	"errors"
	"fmt"
)

// AttachedDisk is an existing disk attached to a new VM with attach semantics
type AttachedDisk struct {
	DiskReference
}

// attachedOSDisk carries the OS type because the provider stores it on the OS disk block
type attachedOSDisk struct {
	AttachedDisk
	osType OSType
}

// CreateSpec is a VM descriptor that can be submitted for creation from existing disks.
// It has no image reference, OS profile or other fields the provider rejects when
// disks are attached instead of created.
type CreateSpec struct {
	name              string
	location          string
	size              string
	licenseType       string
	osDisk            attachedOSDisk
	dataDisks         []AttachedDisk
	networkInterfaces []NetworkInterfaceReference
	availabilitySetID string
	zones             []string
	tags              map[string]string
	bootDiagnostics   *BootDiagnostics
}

// Name returns the VM name
func (s *CreateSpec) Name() string { return s.name }

func (s *CreateSpec) Location() string { return s.location }

func (s *CreateSpec) Size() string { return s.size }

// LicenseType returns the license marker; empty means standard licensing
func (s *CreateSpec) LicenseType() string { return s.licenseType }

// OSType returns the OS type stored on the attached OS disk
func (s *CreateSpec) OSType() OSType { return s.osDisk.osType }

func (s *CreateSpec) OSDisk() AttachedDisk { return s.osDisk.AttachedDisk }

func (s *CreateSpec) AvailabilitySetID() string { return s.availabilitySetID }

func (s *CreateSpec) BootDiagnostics() *BootDiagnostics { return s.bootDiagnostics }

func (s *CreateSpec) NetworkInterfaces() []NetworkInterfaceReference {
	return append([]NetworkInterfaceReference(nil), s.networkInterfaces...)
}

func (s *CreateSpec) Zones() []string {
	return append([]string(nil), s.zones...)
}

// DataDisks returns the attached data disks in attachment order
func (s *CreateSpec) DataDisks() []AttachedDisk {
	return append([]AttachedDisk(nil), s.dataDisks...)
}

// Tags returns a copy of the tags
func (s *CreateSpec) Tags() map[string]string {
	if s.tags == nil {
		return nil
	}
	out := make(map[string]string, len(s.tags))
	for k, v := range s.tags {
		out[k] = v
	}
	return out
}

// CreateSpecBuilder assembles a CreateSpec
type CreateSpecBuilder struct {
	spec       CreateSpec
	osAttached bool
	luns       map[int32]bool
	errs       []error
}

// NewCreateSpecBuilder starts a spec for a VM of the given size
func NewCreateSpecBuilder(name, location, size string) *CreateSpecBuilder {
	return &CreateSpecBuilder{
		spec: CreateSpec{
			name:     name,
			location: location,
			size:     size,
		},
		luns: make(map[int32]bool),
	}
}

// WithLicenseType sets the license marker; empty means standard licensing
func (b *CreateSpecBuilder) WithLicenseType(licenseType string) *CreateSpecBuilder {
	b.spec.licenseType = licenseType
	return b
}

// AttachOSDisk attaches an existing OS disk. Attaching replaces the whole OS
// disk block, which resets any OS type set earlier; call SetOSType afterwards.
func (b *CreateSpecBuilder) AttachOSDisk(ref DiskReference) *CreateSpecBuilder {
	if err := ref.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("os disk: %w", err))
	}
	ref.LUN = 0
	b.spec.osDisk = attachedOSDisk{AttachedDisk: AttachedDisk{DiskReference: ref}}
	b.osAttached = true
	return b
}

// SetOSType sets the guest OS family on the attached OS disk
func (b *CreateSpecBuilder) SetOSType(os OSType) *CreateSpecBuilder {
	b.spec.osDisk.osType = os
	return b
}

// AttachDataDisk attaches an existing data disk, keeping its LUN, caching and size
func (b *CreateSpecBuilder) AttachDataDisk(ref DiskReference) *CreateSpecBuilder {
	if err := ref.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("data disk lun %d: %w", ref.LUN, err))
	}
	if b.luns[ref.LUN] {
		b.errs = append(b.errs, fmt.Errorf("duplicate data disk lun %d", ref.LUN))
	}
	b.luns[ref.LUN] = true
	b.spec.dataDisks = append(b.spec.dataDisks, AttachedDisk{DiskReference: ref})
	return b
}

// WithNetworkInterfaces references the VM's existing network interfaces
func (b *CreateSpecBuilder) WithNetworkInterfaces(nics []NetworkInterfaceReference) *CreateSpecBuilder {
	b.spec.networkInterfaces = append([]NetworkInterfaceReference(nil), nics...)
	return b
}

// WithAvailabilitySet places the VM in an existing availability set
func (b *CreateSpecBuilder) WithAvailabilitySet(id string) *CreateSpecBuilder {
	b.spec.availabilitySetID = id
	return b
}

// WithZones pins the VM to availability zones
func (b *CreateSpecBuilder) WithZones(zones []string) *CreateSpecBuilder {
	b.spec.zones = append([]string(nil), zones...)
	return b
}

// WithTags sets the resource tags
func (b *CreateSpecBuilder) WithTags(tags map[string]string) *CreateSpecBuilder {
	if tags == nil {
		b.spec.tags = nil
		return b
	}
	b.spec.tags = make(map[string]string, len(tags))
	for k, v := range tags {
		b.spec.tags[k] = v
	}
	return b
}

// WithBootDiagnostics keeps the boot diagnostics settings
func (b *CreateSpecBuilder) WithBootDiagnostics(diag *BootDiagnostics) *CreateSpecBuilder {
	if diag != nil {
		d := *diag
		b.spec.bootDiagnostics = &d
	}
	return b
}

// Build validates and returns the spec
func (b *CreateSpecBuilder) Build() (*CreateSpec, error) {
	if b.spec.name == "" {
		return nil, errors.New("vm name is required")
	}
	if b.spec.location == "" {
		return nil, errors.New("vm location is required")
	}
	if !b.osAttached {
		return nil, errors.New("no os disk attached")
	}
	// without an OS type the provider never finishes provisioning the VM
	if b.spec.osDisk.osType == "" {
		return nil, errors.New("os type not set after attaching the os disk")
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	spec := b.spec
	spec.dataDisks = append([]AttachedDisk(nil), b.spec.dataDisks...)
	return &spec, nil
}
