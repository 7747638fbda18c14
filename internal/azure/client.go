// Package azure adapts the Azure compute API to the operations the license
// switcher performs on a single virtual machine.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"

	"github.com/yairfalse/ahub/pkg/types"
)

// VirtualMachinesAPI defines the VirtualMachinesClient methods we use
type VirtualMachinesAPI interface {
	NewListAllPager(options *armcompute.VirtualMachinesClientListAllOptions) *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse]
	InstanceView(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientInstanceViewOptions) (armcompute.VirtualMachinesClientInstanceViewResponse, error)
	BeginPowerOff(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientBeginPowerOffOptions) (*runtime.Poller[armcompute.VirtualMachinesClientPowerOffResponse], error)
	BeginDeallocate(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientBeginDeallocateOptions) (*runtime.Poller[armcompute.VirtualMachinesClientDeallocateResponse], error)
	BeginDelete(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientBeginDeleteOptions) (*runtime.Poller[armcompute.VirtualMachinesClientDeleteResponse], error)
	BeginCreateOrUpdate(ctx context.Context, resourceGroupName string, vmName string, parameters armcompute.VirtualMachine, options *armcompute.VirtualMachinesClientBeginCreateOrUpdateOptions) (*runtime.Poller[armcompute.VirtualMachinesClientCreateOrUpdateResponse], error)
	BeginUpdate(ctx context.Context, resourceGroupName string, vmName string, parameters armcompute.VirtualMachineUpdate, options *armcompute.VirtualMachinesClientBeginUpdateOptions) (*runtime.Poller[armcompute.VirtualMachinesClientUpdateResponse], error)
}

// Client performs VM operations against one subscription
type Client struct {
	vms            VirtualMachinesAPI
	subscriptionID string
}

// NewCredential returns the default Azure credential chain (environment,
// workload identity, managed identity, Azure CLI)
func NewCredential(tenantID string) (azcore.TokenCredential, error) {
	var opts *azidentity.DefaultAzureCredentialOptions
	if tenantID != "" {
		opts = &azidentity.DefaultAzureCredentialOptions{TenantID: tenantID}
	}
	cred, err := azidentity.NewDefaultAzureCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return cred, nil
}

// NewClient creates a client for the subscription
func NewClient(subscriptionID string, cred azcore.TokenCredential) (*Client, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("Azure subscription ID is required")
	}

	vms, err := armcompute.NewVirtualMachinesClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual machines client: %w", err)
	}
	return NewClientWithAPI(vms, subscriptionID), nil
}

// NewClientWithAPI wraps an existing VirtualMachinesAPI
func NewClientWithAPI(vms VirtualMachinesAPI, subscriptionID string) *Client {
	return &Client{vms: vms, subscriptionID: subscriptionID}
}

// SubscriptionID returns the subscription the client operates on
func (c *Client) SubscriptionID() string {
	return c.subscriptionID
}

// List returns every VM in the subscription
func (c *Client) List(ctx context.Context) ([]*types.VirtualMachine, error) {
	return c.list(ctx, func(*armcompute.VirtualMachine) bool { return true })
}

// FindByName returns every VM in the subscription named name. Azure
// resource names are case-insensitive.
func (c *Client) FindByName(ctx context.Context, name string) ([]*types.VirtualMachine, error) {
	return c.list(ctx, func(vm *armcompute.VirtualMachine) bool {
		return strings.EqualFold(toValue(vm.Name), name)
	})
}

func (c *Client) list(ctx context.Context, match func(*armcompute.VirtualMachine) bool) ([]*types.VirtualMachine, error) {
	var result []*types.VirtualMachine

	pager := c.vms.NewListAllPager(nil)
	for pager.More() {
		next, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list virtual machines: %w", err)
		}
		for _, vm := range next.Value {
			if vm == nil || !match(vm) {
				continue
			}
			converted, err := FromARM(vm)
			if err != nil {
				return nil, err
			}
			result = append(result, converted)
		}
	}
	return result, nil
}

// PowerState reads the VM's live power status from its instance view
func (c *Client) PowerState(ctx context.Context, resourceGroup, name string) (types.PowerState, error) {
	view, err := c.vms.InstanceView(ctx, resourceGroup, name, nil)
	if err != nil {
		return types.PowerUnknown, fmt.Errorf("failed to get instance view of %s/%s: %w", resourceGroup, name, err)
	}

	for _, status := range view.Statuses {
		code := toValue(status.Code)
		if types.IsPowerStateCode(code) {
			return types.ParsePowerState(code), nil
		}
	}
	return types.PowerUnknown, nil
}

// PowerOff stops the VM without releasing its compute allocation
func (c *Client) PowerOff(ctx context.Context, resourceGroup, name string) error {
	poller, err := c.vms.BeginPowerOff(ctx, resourceGroup, name, nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to power off %s/%s: %w", resourceGroup, name, err)
	}
	return nil
}

// Deallocate stops the VM and releases its compute allocation
func (c *Client) Deallocate(ctx context.Context, resourceGroup, name string) error {
	poller, err := c.vms.BeginDeallocate(ctx, resourceGroup, name, nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to deallocate %s/%s: %w", resourceGroup, name, err)
	}
	return nil
}

// Delete removes the VM resource. A VM that is already gone counts as deleted.
func (c *Client) Delete(ctx context.Context, resourceGroup, name string) error {
	poller, err := c.vms.BeginDelete(ctx, resourceGroup, name, nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete %s/%s: %w", resourceGroup, name, err)
	}
	return nil
}

// Create submits spec to the resource group and waits for provisioning
func (c *Client) Create(ctx context.Context, resourceGroup string, spec *types.CreateSpec) error {
	poller, err := c.vms.BeginCreateOrUpdate(ctx, resourceGroup, spec.Name(), ToARM(spec), nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s/%s: %w", resourceGroup, spec.Name(), err)
	}
	return nil
}

// KeepOnDelete switches the VM's disks and network interfaces to the Detach
// delete option, so deleting the VM leaves them in place
func (c *Client) KeepOnDelete(ctx context.Context, vm *types.VirtualMachine) error {
	update, err := KeepOnDeleteUpdate(vm)
	if err != nil {
		return err
	}

	poller, err := c.vms.BeginUpdate(ctx, vm.ResourceGroup, vm.Name, update, nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to update delete options of %s/%s: %w", vm.ResourceGroup, vm.Name, err)
	}
	return nil
}

// isNotFound reports whether err is a 404 from the Azure API
func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

func toValue[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
