package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/stretchr/testify/mock"
)

// MockVirtualMachinesClient is a mock implementation of the VirtualMachinesClient
type MockVirtualMachinesClient struct {
	mock.Mock
}

// NewListAllPager mocks the NewListAllPager method
func (m *MockVirtualMachinesClient) NewListAllPager(options *armcompute.VirtualMachinesClientListAllOptions) *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse] {
	args := m.Called(options)
	return args.Get(0).(*runtime.Pager[armcompute.VirtualMachinesClientListAllResponse])
}

// InstanceView mocks the InstanceView method
func (m *MockVirtualMachinesClient) InstanceView(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientInstanceViewOptions) (armcompute.VirtualMachinesClientInstanceViewResponse, error) {
	args := m.Called(ctx, resourceGroupName, vmName)
	return args.Get(0).(armcompute.VirtualMachinesClientInstanceViewResponse), args.Error(1)
}

// BeginPowerOff mocks the BeginPowerOff method
func (m *MockVirtualMachinesClient) BeginPowerOff(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientBeginPowerOffOptions) (*runtime.Poller[armcompute.VirtualMachinesClientPowerOffResponse], error) {
	args := m.Called(ctx, resourceGroupName, vmName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armcompute.VirtualMachinesClientPowerOffResponse]), args.Error(1)
}

// BeginDeallocate mocks the BeginDeallocate method
func (m *MockVirtualMachinesClient) BeginDeallocate(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientBeginDeallocateOptions) (*runtime.Poller[armcompute.VirtualMachinesClientDeallocateResponse], error) {
	args := m.Called(ctx, resourceGroupName, vmName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armcompute.VirtualMachinesClientDeallocateResponse]), args.Error(1)
}

// BeginDelete mocks the BeginDelete method
func (m *MockVirtualMachinesClient) BeginDelete(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientBeginDeleteOptions) (*runtime.Poller[armcompute.VirtualMachinesClientDeleteResponse], error) {
	args := m.Called(ctx, resourceGroupName, vmName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armcompute.VirtualMachinesClientDeleteResponse]), args.Error(1)
}

// BeginCreateOrUpdate mocks the BeginCreateOrUpdate method
func (m *MockVirtualMachinesClient) BeginCreateOrUpdate(ctx context.Context, resourceGroupName string, vmName string, parameters armcompute.VirtualMachine, options *armcompute.VirtualMachinesClientBeginCreateOrUpdateOptions) (*runtime.Poller[armcompute.VirtualMachinesClientCreateOrUpdateResponse], error) {
	args := m.Called(ctx, resourceGroupName, vmName, parameters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armcompute.VirtualMachinesClientCreateOrUpdateResponse]), args.Error(1)
}

// BeginUpdate mocks the BeginUpdate method
func (m *MockVirtualMachinesClient) BeginUpdate(ctx context.Context, resourceGroupName string, vmName string, parameters armcompute.VirtualMachineUpdate, options *armcompute.VirtualMachinesClientBeginUpdateOptions) (*runtime.Poller[armcompute.VirtualMachinesClientUpdateResponse], error) {
	args := m.Called(ctx, resourceGroupName, vmName, parameters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armcompute.VirtualMachinesClientUpdateResponse]), args.Error(1)
}
