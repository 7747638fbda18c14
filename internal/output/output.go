package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/ahub/internal/backup"
	"github.com/yairfalse/ahub/internal/relicense"
	"github.com/yairfalse/ahub/pkg/types"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	FormatVMList(vms []relicense.VMSummary, writer io.Writer) error
	FormatBackup(env *backup.Envelope, writer io.Writer) error
	FormatResult(result *relicense.Result, writer io.Writer) error
}

// ParseFormat validates a user supplied format
func ParseFormat(format string) (OutputFormat, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (expected table, json or yaml)", format)
	}
}

// NewFormatter creates a formatter based on format type
func NewFormatter(format string) (Formatter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return &TableFormatter{}, nil
	}
}

// ResultView is the serializable form of a run result
type ResultView struct {
	VMName          string           `json:"vm" yaml:"vm"`
	ResourceGroup   string           `json:"resource_group" yaml:"resource_group"`
	State           string           `json:"state" yaml:"state"`
	Transitions     []string         `json:"transitions" yaml:"transitions"`
	PreviousLicense string           `json:"previous_license" yaml:"previous_license"`
	AppliedLicense  string           `json:"applied_license" yaml:"applied_license"`
	BackupLocation  string           `json:"backup_location,omitempty" yaml:"backup_location,omitempty"`
	OriginalPower   types.PowerState `json:"original_power_state" yaml:"original_power_state"`
	Stopped         bool             `json:"stopped" yaml:"stopped"`
	PowerRestoreErr string           `json:"power_restore_error,omitempty" yaml:"power_restore_error,omitempty"`
	Planned         *PlannedView     `json:"planned,omitempty" yaml:"planned,omitempty"`
}

// PlannedView is the serializable form of a planned create descriptor
type PlannedView struct {
	Name        string                `json:"name" yaml:"name"`
	Location    string                `json:"location" yaml:"location"`
	Size        string                `json:"size" yaml:"size"`
	OSType      types.OSType          `json:"os_type" yaml:"os_type"`
	LicenseType string                `json:"license_type" yaml:"license_type"`
	OSDisk      types.DiskReference   `json:"os_disk" yaml:"os_disk"`
	DataDisks   []types.DiskReference `json:"data_disks,omitempty" yaml:"data_disks,omitempty"`
}

// NewResultView flattens a result for serialization
func NewResultView(r *relicense.Result) ResultView {
	view := ResultView{
		VMName:          r.VMName,
		ResourceGroup:   r.ResourceGroup,
		State:           r.State.String(),
		PreviousLicense: r.PreviousLicense,
		AppliedLicense:  r.AppliedLicense,
		BackupLocation:  r.BackupLocation,
		OriginalPower:   r.OriginalPower,
		Stopped:         r.Stopped,
	}
	for _, s := range r.Transitions {
		view.Transitions = append(view.Transitions, s.String())
	}
	if r.PowerRestoreErr != nil {
		view.PowerRestoreErr = r.PowerRestoreErr.Error()
	}
	if spec := r.Planned; spec != nil {
		planned := &PlannedView{
			Name:        spec.Name(),
			Location:    spec.Location(),
			Size:        spec.Size(),
			OSType:      spec.OSType(),
			LicenseType: spec.LicenseType(),
			OSDisk:      spec.OSDisk().DiskReference,
		}
		for _, disk := range spec.DataDisks() {
			planned.DataDisks = append(planned.DataDisks, disk.DiskReference)
		}
		view.Planned = planned
	}
	return view
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

func (f *JSONFormatter) FormatVMList(vms []relicense.VMSummary, writer io.Writer) error {
	if vms == nil {
		vms = []relicense.VMSummary{}
	}
	return f.encode(vms, writer)
}

func (f *JSONFormatter) FormatBackup(env *backup.Envelope, writer io.Writer) error {
	return f.encode(env, writer)
}

func (f *JSONFormatter) FormatResult(result *relicense.Result, writer io.Writer) error {
	return f.encode(NewResultView(result), writer)
}

func (f *JSONFormatter) encode(v interface{}, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatVMList(vms []relicense.VMSummary, writer io.Writer) error {
	return f.encode(vms, writer)
}

func (f *YAMLFormatter) FormatBackup(env *backup.Envelope, writer io.Writer) error {
	data, err := backup.Encode(env, backup.FormatYAML)
	if err != nil {
		return err
	}
	_, err = writer.Write(data)
	return err
}

func (f *YAMLFormatter) FormatResult(result *relicense.Result, writer io.Writer) error {
	return f.encode(NewResultView(result), writer)
}

func (f *YAMLFormatter) encode(v interface{}, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	defer encoder.Close()
	return encoder.Encode(v)
}
