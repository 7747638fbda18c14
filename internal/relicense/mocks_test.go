package relicense

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yairfalse/ahub/pkg/types"
)

// MockCompute is a mock implementation of Compute and Lister
type MockCompute struct {
	mock.Mock
}

func (m *MockCompute) FindByName(ctx context.Context, name string) ([]*types.VirtualMachine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.VirtualMachine), args.Error(1)
}

func (m *MockCompute) List(ctx context.Context) ([]*types.VirtualMachine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.VirtualMachine), args.Error(1)
}

func (m *MockCompute) PowerState(ctx context.Context, resourceGroup, name string) (types.PowerState, error) {
	args := m.Called(ctx, resourceGroup, name)
	return args.Get(0).(types.PowerState), args.Error(1)
}

func (m *MockCompute) PowerOff(ctx context.Context, resourceGroup, name string) error {
	args := m.Called(ctx, resourceGroup, name)
	return args.Error(0)
}

func (m *MockCompute) Deallocate(ctx context.Context, resourceGroup, name string) error {
	args := m.Called(ctx, resourceGroup, name)
	return args.Error(0)
}

func (m *MockCompute) Delete(ctx context.Context, resourceGroup, name string) error {
	args := m.Called(ctx, resourceGroup, name)
	return args.Error(0)
}

func (m *MockCompute) Create(ctx context.Context, resourceGroup string, spec *types.CreateSpec) error {
	args := m.Called(ctx, resourceGroup, spec)
	return args.Error(0)
}

func (m *MockCompute) KeepOnDelete(ctx context.Context, vm *types.VirtualMachine) error {
	args := m.Called(ctx, vm)
	return args.Error(0)
}

// MockBackupWriter is a mock implementation of BackupWriter
type MockBackupWriter struct {
	mock.Mock
}

func (m *MockBackupWriter) Write(ctx context.Context, vm *types.VirtualMachine) (string, error) {
	args := m.Called(ctx, vm)
	return args.String(0), args.Error(1)
}

// mutatingCalls returns the names of the calls that change a VM, in order
func mutatingCalls(m *MockCompute) []string {
	var names []string
	for _, call := range m.Calls {
		switch call.Method {
		case "PowerOff", "Deallocate", "Delete", "Create", "KeepOnDelete":
			names = append(names, call.Method)
		}
	}
	return names
}

// createdSpecs returns the specs passed to Create, in order
func createdSpecs(m *MockCompute) []*types.CreateSpec {
	var specs []*types.CreateSpec
	for _, call := range m.Calls {
		if call.Method == "Create" {
			specs = append(specs, call.Arguments.Get(2).(*types.CreateSpec))
		}
	}
	return specs
}
