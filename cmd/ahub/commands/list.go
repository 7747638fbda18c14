package commands

import (
	"github.com/spf13/cobra"

	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/relicense"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List virtual machines with their license mode",
		Long: `List every virtual machine in the subscription with its OS type, license
mode and power state. Nothing is changed.`,
		Example: `  # All VMs in the subscription
  ahub list

  # VMs in one resource group as JSON
  ahub list --resource-group prod-rg --output json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().StringP("resource-group", "g", "", "only list VMs in this resource group")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	resourceGroup, _ := cmd.Flags().GetString("resource-group")
	if resourceGroup == "" {
		resourceGroup = cfg.Azure.ResourceGroup
	}

	log, closeLog, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	client, _, err := newAzureClient(cmd)
	if err != nil {
		return err
	}

	log.WithField("subscription", client.SubscriptionID()).Debug("listing virtual machines")

	vms, err := relicense.List(cmd.Context(), client, resourceGroup)
	if err != nil {
		return ahuberrors.ProviderError("", "failed to list virtual machines", err)
	}

	return formatter.FormatVMList(vms, cmd.OutOrStdout())
}
