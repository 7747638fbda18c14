package relicense

import (
	"fmt"

	"github.com/yairfalse/ahub/pkg/types"
)

// Rebuild builds the descriptor that recreates the captured VM in mode and
// the one that recreates it unchanged. The two differ only in license type.
func Rebuild(state types.CapturedState, mode types.LicenseMode, hybridMarker string) (newSpec, oldSpec *types.CreateSpec, err error) {
	newSpec, err = buildSpec(state, mode.Marker(hybridMarker))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot rebuild %s with %s licensing: %w", state.VMName, mode, err)
	}

	oldSpec, err = buildSpec(state, state.LicenseType)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot rebuild %s with its previous license: %w", state.VMName, err)
	}

	return newSpec, oldSpec, nil
}

func buildSpec(state types.CapturedState, licenseType string) (*types.CreateSpec, error) {
	b := types.NewCreateSpecBuilder(state.VMName, state.Location, state.Size).
		WithLicenseType(licenseType).
		AttachOSDisk(state.OSDisk).
		// attaching the OS disk clears the OS type
		SetOSType(state.OSType)

	for _, disk := range state.DataDisks {
		b.AttachDataDisk(disk)
	}

	return b.WithNetworkInterfaces(state.NetworkInterfaces).
		WithAvailabilitySet(state.AvailabilitySetID).
		WithZones(state.Zones).
		WithTags(state.Tags).
		WithBootDiagnostics(state.BootDiagnostics).
		Build()
}
