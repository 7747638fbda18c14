package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVM() *VirtualMachine {
	return &VirtualMachine{
		Name:          "web01",
		ResourceGroup: "rg-web",
		Location:      "westeurope",
		OSType:        OSTypeWindows,
		OSDisk:        DiskReference{Name: "web01-os", ManagedDiskID: "/disks/web01-os"},
		DataDisks: []DiskReference{
			{Name: "web01-data", ManagedDiskID: "/disks/web01-data", LUN: 0},
		},
		NetworkInterfaces: []NetworkInterfaceReference{{ID: "/nics/web01", Primary: true}},
		Zones:             []string{"1"},
		Tags:              map[string]string{"env": "prod"},
		BootDiagnostics:   &BootDiagnostics{Enabled: true},
	}
}

func TestVirtualMachine_Validate(t *testing.T) {
	require.NoError(t, testVM().Validate())

	vm := testVM()
	vm.ResourceGroup = ""
	assert.Error(t, vm.Validate())

	vm = testVM()
	vm.DataDisks[0].ManagedDiskID = ""
	assert.Error(t, vm.Validate())
}

func TestVirtualMachine_DeletedWithVM(t *testing.T) {
	vm := testVM()
	assert.Empty(t, vm.DeletedWithVM())

	vm.OSDisk.DeleteWithVM = true
	vm.NetworkInterfaces[0].DeleteWithVM = true
	assert.Equal(t, []string{"web01-os", "/nics/web01"}, vm.DeletedWithVM())
}

func TestCaptureIsDeepCopy(t *testing.T) {
	vm := testVM()
	state := Capture(vm, PowerDeallocated, "/backups/web01.json")

	vm.DataDisks[0].LUN = 9
	vm.Zones[0] = "2"
	vm.Tags["env"] = "dev"
	vm.BootDiagnostics.Enabled = false
	vm.NetworkInterfaces[0].Primary = false

	assert.Equal(t, int32(0), state.DataDisks[0].LUN)
	assert.Equal(t, []string{"1"}, state.Zones)
	assert.Equal(t, "prod", state.Tags["env"])
	assert.True(t, state.BootDiagnostics.Enabled)
	assert.True(t, state.NetworkInterfaces[0].Primary)
	assert.Equal(t, PowerDeallocated, state.PowerState)
	assert.Equal(t, "/backups/web01.json", state.BackupLocation)
}
