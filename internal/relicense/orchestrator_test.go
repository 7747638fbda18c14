package relicense

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/ahub/internal/backup"
	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/logger"
	"github.com/yairfalse/ahub/internal/storage"
	"github.com/yairfalse/ahub/pkg/types"
)

const web01Backup = "/backups/web01/web01-20240301T120000Z.json"
const db02Backup = "/backups/db02/db02-20240301T120000Z.json"

func web01() *types.VirtualMachine {
	return &types.VirtualMachine{
		ID:            "/subscriptions/sub/resourceGroups/rg-web/providers/Microsoft.Compute/virtualMachines/web01",
		Name:          "web01",
		ResourceGroup: "rg-web",
		Location:      "westeurope",
		Size:          "Standard_D2s_v3",
		OSType:        types.OSTypeWindows,
		OSDisk: types.DiskReference{
			Name:          "web01-os",
			ManagedDiskID: "/disks/web01-os",
			Caching:       types.CachingReadWrite,
		},
		DataDisks: []types.DiskReference{
			{Name: "web01-data0", ManagedDiskID: "/disks/web01-data0", Caching: types.CachingReadOnly, SizeGB: 128, LUN: 0},
		},
		NetworkInterfaces: []types.NetworkInterfaceReference{{ID: "/nics/web01-nic", Primary: true}},
		Tags:              map[string]string{"env": "prod"},
	}
}

func db02() *types.VirtualMachine {
	return &types.VirtualMachine{
		ID:            "/subscriptions/sub/resourceGroups/rg-db/providers/Microsoft.Compute/virtualMachines/db02",
		Name:          "db02",
		ResourceGroup: "rg-db",
		Location:      "northeurope",
		Size:          "Standard_E8s_v3",
		OSType:        types.OSTypeWindows,
		LicenseType:   "Windows_Server",
		OSDisk: types.DiskReference{
			Name:          "db02-os",
			ManagedDiskID: "/disks/db02-os",
			Caching:       types.CachingReadWrite,
		},
		DataDisks: []types.DiskReference{
			{Name: "db02-data", ManagedDiskID: "/disks/db02-data", Caching: types.CachingReadOnly, SizeGB: 1024, LUN: 0},
			{Name: "db02-log", ManagedDiskID: "/disks/db02-log", Caching: types.CachingNone, SizeGB: 256, LUN: 1},
			{Name: "db02-temp", ManagedDiskID: "/disks/db02-temp", Caching: types.CachingNone, SizeGB: 64, LUN: 5},
		},
		NetworkInterfaces: []types.NetworkInterfaceReference{{ID: "/nics/db02-nic", Primary: true}},
		AvailabilitySetID: "/availabilitySets/db",
		BootDiagnostics:   &types.BootDiagnostics{Enabled: true},
	}
}

func newTestOrchestrator(opts Options) (*Orchestrator, *MockCompute, *MockBackupWriter) {
	compute := new(MockCompute)
	backups := new(MockBackupWriter)
	return New(compute, backups, logger.Discard(), opts), compute, backups
}

func expectLocate(compute *MockCompute, vm *types.VirtualMachine, power types.PowerState) {
	compute.On("FindByName", mock.Anything, vm.Name).Return([]*types.VirtualMachine{vm}, nil)
	compute.On("PowerState", mock.Anything, vm.ResourceGroup, vm.Name).Return(power, nil)
}

func assertNoMutation(t *testing.T, compute *MockCompute, backups *MockBackupWriter) {
	t.Helper()
	assert.Empty(t, mutatingCalls(compute))
	backups.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestRunWeb01RunningToHybrid(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	expectLocate(compute, vm, types.PowerRunning)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("Deallocate", mock.Anything, "rg-web", "web01").Return(nil)
	compute.On("Delete", mock.Anything, "rg-web", "web01").Return(nil)
	compute.On("Create", mock.Anything, "rg-web", mock.Anything).Return(nil)

	result, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"Deallocate", "Delete", "Create"}, mutatingCalls(compute))
	assert.Equal(t, StateRecreated, result.State)
	assert.Equal(t, []State{
		StateLocated, StateValidated, StateBackedUp, StateCaptured, StateStopped,
		StateDestroyed, StateRecreating, StateRecreated, StatePowerRestored,
	}, result.Transitions)
	assert.Equal(t, web01Backup, result.BackupLocation)
	assert.Equal(t, "", result.PreviousLicense)
	assert.Equal(t, types.DefaultHybridMarker, result.AppliedLicense)
	assert.True(t, result.Stopped)
	assert.NoError(t, result.PowerRestoreErr)

	specs := createdSpecs(compute)
	require.Len(t, specs, 1)
	assert.Equal(t, "Windows_Server", specs[0].LicenseType())
	assert.Equal(t, types.OSTypeWindows, specs[0].OSType())
	assert.Equal(t, "westeurope", specs[0].Location())
	assert.Equal(t, "/disks/web01-os", specs[0].OSDisk().ManagedDiskID)
}

func TestRunDb02DeallocatedToStandard(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := db02()
	expectLocate(compute, vm, types.PowerDeallocated)
	backups.On("Write", mock.Anything, vm).Return(db02Backup, nil)
	compute.On("Delete", mock.Anything, "rg-db", "db02").Return(nil)
	compute.On("Create", mock.Anything, "rg-db", mock.Anything).Return(nil)
	compute.On("Deallocate", mock.Anything, "rg-db", "db02").Return(nil)

	// Already off, so no authorization is needed
	result, err := o.Run(context.Background(), Request{VMName: "db02", Mode: types.LicenseStandard})
	require.NoError(t, err)

	assert.Equal(t, []string{"Delete", "Create", "Deallocate"}, mutatingCalls(compute))
	assert.False(t, result.Stopped)
	assert.Equal(t, "", result.AppliedLicense)
	assert.Equal(t, "Windows_Server", result.PreviousLicense)

	spec := createdSpecs(compute)[0]
	assert.Equal(t, "", spec.LicenseType())
	disks := spec.DataDisks()
	require.Len(t, disks, 3)
	for i, disk := range disks {
		assert.Equal(t, vm.DataDisks[i].LUN, disk.LUN)
		assert.Equal(t, vm.DataDisks[i].Caching, disk.Caching)
		assert.Equal(t, vm.DataDisks[i].SizeGB, disk.SizeGB)
		assert.Equal(t, vm.DataDisks[i].ManagedDiskID, disk.ManagedDiskID)
	}
	assert.Equal(t, "/availabilitySets/db", spec.AvailabilitySetID())
}

func TestRunPreservesStoppedPowerState(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := db02()
	expectLocate(compute, vm, types.PowerStopped)
	backups.On("Write", mock.Anything, vm).Return(db02Backup, nil)
	compute.On("Delete", mock.Anything, "rg-db", "db02").Return(nil)
	compute.On("Create", mock.Anything, "rg-db", mock.Anything).Return(nil)
	compute.On("PowerOff", mock.Anything, "rg-db", "db02").Return(nil)

	_, err := o.Run(context.Background(), Request{VMName: "db02", Mode: types.LicenseStandard})
	require.NoError(t, err)
	assert.Equal(t, []string{"Delete", "Create", "PowerOff"}, mutatingCalls(compute))
}

func TestRunRejectsWithoutMutation(t *testing.T) {
	linux := web01()
	linux.OSType = types.OSTypeLinux

	diskless := web01()
	diskless.OSDisk.ManagedDiskID = ""

	tests := []struct {
		name    string
		setup   func(compute *MockCompute)
		req     Request
		errType ahuberrors.ErrorType
	}{
		{
			name: "not found",
			setup: func(compute *MockCompute) {
				compute.On("FindByName", mock.Anything, "web01").Return([]*types.VirtualMachine{}, nil)
			},
			req:     Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true},
			errType: ahuberrors.ErrorTypeNotFound,
		},
		{
			name: "ambiguous",
			setup: func(compute *MockCompute) {
				other := web01()
				other.ResourceGroup = "rg-other"
				other.ID = "/subscriptions/sub/resourceGroups/rg-other/providers/Microsoft.Compute/virtualMachines/web01"
				compute.On("FindByName", mock.Anything, "web01").Return([]*types.VirtualMachine{web01(), other}, nil)
			},
			req:     Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true},
			errType: ahuberrors.ErrorTypeAmbiguousName,
		},
		{
			name:    "already in mode",
			setup:   func(compute *MockCompute) { expectLocate(compute, db02(), types.PowerDeallocated) },
			req:     Request{VMName: "db02", Mode: types.LicenseHybrid, Force: true},
			errType: ahuberrors.ErrorTypeNoOp,
		},
		{
			name:    "linux guest",
			setup:   func(compute *MockCompute) { expectLocate(compute, linux, types.PowerDeallocated) },
			req:     Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true},
			errType: ahuberrors.ErrorTypeUnsupportedGuest,
		},
		{
			name:    "running without force",
			setup:   func(compute *MockCompute) { expectLocate(compute, web01(), types.PowerRunning) },
			req:     Request{VMName: "web01", Mode: types.LicenseHybrid},
			errType: ahuberrors.ErrorTypeConfirmationRequired,
		},
		{
			name:    "transitional state without force",
			setup:   func(compute *MockCompute) { expectLocate(compute, web01(), types.PowerStopping) },
			req:     Request{VMName: "web01", Mode: types.LicenseHybrid},
			errType: ahuberrors.ErrorTypeConfirmationRequired,
		},
		{
			name:    "os disk without reference",
			setup:   func(compute *MockCompute) { expectLocate(compute, diskless, types.PowerDeallocated) },
			req:     Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true},
			errType: ahuberrors.ErrorTypeValidation,
		},
		{
			name:    "empty name",
			setup:   func(compute *MockCompute) {},
			req:     Request{VMName: "  ", Mode: types.LicenseHybrid},
			errType: ahuberrors.ErrorTypeValidation,
		},
		{
			name: "lookup failure",
			setup: func(compute *MockCompute) {
				compute.On("FindByName", mock.Anything, "web01").Return(nil, errors.New("AuthorizationFailed"))
			},
			req:     Request{VMName: "web01", Mode: types.LicenseHybrid},
			errType: ahuberrors.ErrorTypeProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, compute, backups := newTestOrchestrator(Options{})
			tt.setup(compute)

			_, err := o.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, ahuberrors.IsType(err, tt.errType), "got %v", err)
			assertNoMutation(t, compute, backups)
		})
	}
}

func TestRunResourceGroupDisambiguates(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{ResourceGroup: "RG-WEB"})
	other := web01()
	other.ResourceGroup = "rg-other"

	vm := web01()
	compute.On("FindByName", mock.Anything, "web01").Return([]*types.VirtualMachine{other, vm}, nil)
	compute.On("PowerState", mock.Anything, "rg-web", "web01").Return(types.PowerDeallocated, nil)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("Delete", mock.Anything, "rg-web", "web01").Return(nil)
	compute.On("Create", mock.Anything, "rg-web", mock.Anything).Return(nil)
	compute.On("Deallocate", mock.Anything, "rg-web", "web01").Return(nil)

	result, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
	require.NoError(t, err)
	assert.Equal(t, "rg-web", result.ResourceGroup)
	compute.AssertNotCalled(t, "Delete", mock.Anything, "rg-other", "web01")
}

func TestRunBackupFailureAborts(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	expectLocate(compute, vm, types.PowerRunning)
	backups.On("Write", mock.Anything, vm).Return("", errors.New("disk full"))

	_, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true})
	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeBackupWrite))
	assert.Empty(t, mutatingCalls(compute))
}

func TestRunStopFailureAbortsBeforeDelete(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	expectLocate(compute, vm, types.PowerRunning)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("Deallocate", mock.Anything, "rg-web", "web01").Return(errors.New("timeout"))

	result, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true})
	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeStopFailed))
	assert.Equal(t, []string{"Deallocate"}, mutatingCalls(compute))
	assert.Equal(t, StateCaptured, result.State)
}

func TestRunDeletionFailureDoesNotRecreate(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	expectLocate(compute, vm, types.PowerDeallocated)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("Delete", mock.Anything, "rg-web", "web01").Return(errors.New("conflict"))

	_, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeDeletionFailed))
	assert.Contains(t, err.Error(), web01Backup)
	assert.Equal(t, []string{"Delete"}, mutatingCalls(compute))
}

func TestRunRollsBackExactlyOnce(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	expectLocate(compute, vm, types.PowerDeallocated)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("Delete", mock.Anything, "rg-web", "web01").Return(nil)
	compute.On("Create", mock.Anything, "rg-web", mock.MatchedBy(func(s *types.CreateSpec) bool {
		return s.LicenseType() == "Windows_Server"
	})).Return(errors.New("LicenseTypeNotAllowed"))
	compute.On("Create", mock.Anything, "rg-web", mock.MatchedBy(func(s *types.CreateSpec) bool {
		return s.LicenseType() == ""
	})).Return(nil)
	compute.On("Deallocate", mock.Anything, "rg-web", "web01").Return(nil)

	result, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeRolledBack))
	assert.Contains(t, err.Error(), "LicenseTypeNotAllowed")

	specs := createdSpecs(compute)
	require.Len(t, specs, 2)
	assert.Equal(t, "Windows_Server", specs[0].LicenseType())
	assert.Equal(t, "", specs[1].LicenseType())
	assert.Equal(t, StateRolledBack, result.State)
	assert.Equal(t, StatePowerRestored, result.Transitions[len(result.Transitions)-1])
	assert.Equal(t, "", result.AppliedLicense)
	// power is restored after a rollback too
	assert.Equal(t, []string{"Delete", "Create", "Create", "Deallocate"}, mutatingCalls(compute))
}

func TestRunKeepsResourcesDeletedWithVM(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	vm.OSDisk.DeleteWithVM = true
	vm.NetworkInterfaces[0].DeleteWithVM = true

	expectLocate(compute, vm, types.PowerRunning)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("KeepOnDelete", mock.Anything, vm).Return(nil).Run(func(mock.Arguments) {
		// the backup must hold the original delete options
		backups.AssertCalled(t, "Write", mock.Anything, vm)
	})
	compute.On("Deallocate", mock.Anything, "rg-web", "web01").Return(nil)
	compute.On("Delete", mock.Anything, "rg-web", "web01").Return(nil)
	compute.On("Create", mock.Anything, "rg-web", mock.Anything).Return(nil)

	result, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid, Force: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"KeepOnDelete", "Deallocate", "Delete", "Create"}, mutatingCalls(compute))
	assert.Equal(t, StateRecreated, result.State)
}

func TestRunKeepOnDeleteFailureDeletesNothing(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	vm.DataDisks[0].DeleteWithVM = true

	expectLocate(compute, vm, types.PowerDeallocated)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("KeepOnDelete", mock.Anything, vm).Return(errors.New("OperationNotAllowed"))

	_, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeProvider))
	assert.Contains(t, err.Error(), web01Backup)
	assert.Equal(t, []string{"KeepOnDelete"}, mutatingCalls(compute))
}

func TestRunDryRunLeavesDeleteOptionsAlone(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{DryRun: true})
	vm := web01()
	vm.OSDisk.DeleteWithVM = true
	expectLocate(compute, vm, types.PowerDeallocated)

	result, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
	require.NoError(t, err)
	assert.Equal(t, StatePlanned, result.State)
	assertNoMutation(t, compute, backups)
}

func TestRunOutcomeSurvivesPowerRestore(t *testing.T) {
	tests := []struct {
		name       string
		primaryErr error
		wantState  State
	}{
		{name: "recreated", primaryErr: nil, wantState: StateRecreated},
		{name: "rolled back", primaryErr: errors.New("SkuNotAvailable"), wantState: StateRolledBack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, compute, backups := newTestOrchestrator(Options{})
			vm := web01()
			expectLocate(compute, vm, types.PowerDeallocated)
			backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
			compute.On("Delete", mock.Anything, "rg-web", "web01").Return(nil)
			compute.On("Create", mock.Anything, "rg-web", mock.MatchedBy(func(s *types.CreateSpec) bool {
				return s.LicenseType() == "Windows_Server"
			})).Return(tt.primaryErr)
			compute.On("Create", mock.Anything, "rg-web", mock.MatchedBy(func(s *types.CreateSpec) bool {
				return s.LicenseType() == ""
			})).Return(nil)
			compute.On("Deallocate", mock.Anything, "rg-web", "web01").Return(nil)

			result, _ := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
			require.NotNil(t, result)

			assert.Equal(t, tt.wantState, result.State)
			assert.True(t, result.State.Terminal())
			assert.Contains(t, result.Transitions, tt.wantState)
			assert.Equal(t, StatePowerRestored, result.Transitions[len(result.Transitions)-1])
		})
	}
}

func TestRunReconciliationFailure(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := db02()
	expectLocate(compute, vm, types.PowerDeallocated)
	backups.On("Write", mock.Anything, vm).Return(db02Backup, nil)
	compute.On("Delete", mock.Anything, "rg-db", "db02").Return(nil)
	compute.On("Create", mock.Anything, "rg-db", mock.Anything).Return(errors.New("QuotaExceeded"))

	result, err := o.Run(context.Background(), Request{VMName: "db02", Mode: types.LicenseStandard})
	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeReconciliationFailed))
	assert.Contains(t, err.Error(), db02Backup)
	assert.Equal(t, StateReconciliationFailed, result.State)
	assert.Equal(t, []string{"Delete", "Create", "Create"}, mutatingCalls(compute))
}

func TestRunPowerRestoreFailureIsNotFatal(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := db02()
	expectLocate(compute, vm, types.PowerStopped)
	backups.On("Write", mock.Anything, vm).Return(db02Backup, nil)
	compute.On("Delete", mock.Anything, "rg-db", "db02").Return(nil)
	compute.On("Create", mock.Anything, "rg-db", mock.Anything).Return(nil)
	compute.On("PowerOff", mock.Anything, "rg-db", "db02").Return(errors.New("throttled"))

	result, err := o.Run(context.Background(), Request{VMName: "db02", Mode: types.LicenseStandard})
	require.NoError(t, err)
	assert.Equal(t, StateRecreated, result.State)
	assert.EqualError(t, result.PowerRestoreErr, "throttled")
	assert.NotContains(t, result.Transitions, StatePowerRestored)
}

func TestRunIgnoresCancellationAfterDelete(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	vm := web01()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expectLocate(compute, vm, types.PowerDeallocated)
	backups.On("Write", mock.Anything, vm).Return(web01Backup, nil)
	compute.On("Delete", mock.Anything, "rg-web", "web01").Return(nil).Run(func(mock.Arguments) {
		cancel()
	})
	compute.On("Create", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), "rg-web", mock.Anything).Return(nil)
	compute.On("Deallocate", mock.Anything, "rg-web", "web01").Return(nil)

	result, err := o.Run(ctx, Request{VMName: "web01", Mode: types.LicenseHybrid})
	require.NoError(t, err)
	assert.Equal(t, StateRecreated, result.State)
}

func TestRunDryRun(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{DryRun: true, HybridMarker: "Windows_Client"})
	vm := web01()
	expectLocate(compute, vm, types.PowerDeallocated)

	result, err := o.Run(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
	require.NoError(t, err)
	assertNoMutation(t, compute, backups)

	assert.Equal(t, StatePlanned, result.State)
	require.NotNil(t, result.Planned)
	assert.Equal(t, "Windows_Client", result.Planned.LicenseType())
	assert.Empty(t, result.BackupLocation)
}

func TestPreviewRunningWithoutForce(t *testing.T) {
	o, compute, backups := newTestOrchestrator(Options{})
	expectLocate(compute, web01(), types.PowerRunning)

	_, err := o.Preview(context.Background(), Request{VMName: "web01", Mode: types.LicenseHybrid})
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeConfirmationRequired))
	assertNoMutation(t, compute, backups)
}

func TestRunBackupMatchesPreChangeDescriptor(t *testing.T) {
	ctx := context.Background()
	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	writer, err := backup.NewWriter(backend, backup.Options{OperationID: "op-1"})
	require.NoError(t, err)

	compute := new(MockCompute)
	o := New(compute, writer, logger.Discard(), Options{})

	vm := db02()
	expectLocate(compute, vm, types.PowerDeallocated)
	compute.On("Delete", mock.Anything, "rg-db", "db02").Return(nil)
	compute.On("Create", mock.Anything, "rg-db", mock.Anything).Return(nil)
	compute.On("Deallocate", mock.Anything, "rg-db", "db02").Return(nil)

	result, err := o.Run(ctx, Request{VMName: "db02", Mode: types.LicenseStandard})
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupLocation)

	env, err := backup.Read(ctx, result.BackupLocation, storage.Options{})
	require.NoError(t, err)
	assert.Equal(t, *db02(), env.VM)
	assert.Equal(t, "op-1", env.OperationID)
}
