package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/yairfalse/ahub/internal/backup"
	"github.com/yairfalse/ahub/internal/relicense"
	"github.com/yairfalse/ahub/pkg/types"
)

// TableFormatter formats output as aligned tables
type TableFormatter struct{}

// FormatVMList formats the VM listing as a table
func (t *TableFormatter) FormatVMList(vms []relicense.VMSummary, writer io.Writer) error {
	if len(vms) == 0 {
		_, err := fmt.Fprintln(writer, "No virtual machines found.")
		return err
	}

	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RESOURCE GROUP\tNAME\tLOCATION\tSIZE\tOS\tLICENSE\tPOWER\n")
	for _, vm := range vms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			vm.ResourceGroup,
			vm.Name,
			vm.Location,
			vm.Size,
			orDash(string(vm.OSType)),
			licenseCell(vm.License, vm.LicenseType),
			powerCell(vm.PowerState),
		)
	}
	return w.Flush()
}

// FormatBackup formats a stored backup
func (t *TableFormatter) FormatBackup(env *backup.Envelope, writer io.Writer) error {
	vm := env.VM
	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Backup of %s\n", vm.Name)
	fmt.Fprintf(w, "Created:\t%s\n", env.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if env.OperationID != "" {
		fmt.Fprintf(w, "Operation:\t%s\n", env.OperationID)
	}
	fmt.Fprintf(w, "ID:\t%s\n", vm.ID)
	fmt.Fprintf(w, "Resource group:\t%s\n", vm.ResourceGroup)
	fmt.Fprintf(w, "Location:\t%s\n", vm.Location)
	fmt.Fprintf(w, "Size:\t%s\n", vm.Size)
	fmt.Fprintf(w, "OS type:\t%s\n", vm.OSType)
	fmt.Fprintf(w, "License:\t%s\n", licenseCell(vm.LicenseMode(), vm.LicenseType))
	if vm.AvailabilitySetID != "" {
		fmt.Fprintf(w, "Availability set:\t%s\n", vm.AvailabilitySetID)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "DISK\tLUN\tCACHING\tSIZE (GB)\tREFERENCE\n")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", vm.OSDisk.Name, "os", orDash(string(vm.OSDisk.Caching)), sizeCell(vm.OSDisk.SizeGB), diskRef(vm.OSDisk))
	for _, disk := range vm.DataDisks {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", disk.Name, disk.LUN, orDash(string(disk.Caching)), sizeCell(disk.SizeGB), diskRef(disk))
	}

	if len(vm.NetworkInterfaces) > 0 {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "NETWORK INTERFACE\tPRIMARY\n")
		for _, nic := range vm.NetworkInterfaces {
			fmt.Fprintf(w, "%s\t%t\n", nic.ID, nic.Primary)
		}
	}

	return w.Flush()
}

// FormatResult summarizes a run
func (t *TableFormatter) FormatResult(result *relicense.Result, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "VM:\t%s/%s\n", result.ResourceGroup, result.VMName)
	fmt.Fprintf(w, "State:\t%s\n", result.State)
	fmt.Fprintf(w, "Previous license:\t%s\n", orDash(result.PreviousLicense))
	if result.State == relicense.StatePlanned && result.Planned != nil {
		fmt.Fprintf(w, "Planned license:\t%s\n", orDash(result.Planned.LicenseType()))
		fmt.Fprintf(w, "Data disks:\t%d\n", len(result.Planned.DataDisks()))
	} else {
		fmt.Fprintf(w, "Applied license:\t%s\n", orDash(result.AppliedLicense))
	}
	if result.BackupLocation != "" {
		fmt.Fprintf(w, "Backup:\t%s\n", result.BackupLocation)
	}
	fmt.Fprintf(w, "Power state:\t%s\n", powerCell(result.OriginalPower))
	if result.PowerRestoreErr != nil {
		fmt.Fprintf(w, "Power restore:\t%s\n", color.YellowString("failed: %v", result.PowerRestoreErr))
	}

	return w.Flush()
}

func licenseCell(mode types.LicenseMode, licenseType string) string {
	if mode == types.LicenseHybrid {
		return color.GreenString("%s (%s)", mode, licenseType)
	}
	return string(mode)
}

func powerCell(state types.PowerState) string {
	switch state {
	case types.PowerRunning:
		return color.GreenString(string(state))
	case types.PowerStopped, types.PowerDeallocated:
		return color.New(color.Faint).Sprint(string(state))
	case "":
		return "-"
	default:
		return color.YellowString(string(state))
	}
}

func diskRef(d types.DiskReference) string {
	if d.IsManaged() {
		return d.ManagedDiskID
	}
	return d.VHDURI
}

func sizeCell(gb int32) string {
	if gb == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", gb)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
