package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/ahub/internal/backup"
	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/storage"
	"github.com/yairfalse/ahub/pkg/config"
	"github.com/yairfalse/ahub/pkg/types"
)

func TestRunVersionShort(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "", "")

	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Flags().Set("short", "true"))

	runVersion(cmd, nil)

	assert.Equal(t, "1.2.3\n", out.String())
	assert.Equal(t, "unknown", BuildTime, "empty values keep the default")
}

func TestRunSetRejectsInvalidMode(t *testing.T) {
	cfg = config.DefaultConfig()

	cmd := newSetCommand()
	require.NoError(t, cmd.Flags().Set("vm", "web01"))
	require.NoError(t, cmd.Flags().Set("mode", "byol"))

	err := runSet(cmd, nil)

	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeValidation))
	assert.Equal(t, ahuberrors.ExitGeneric, ahuberrors.GetExitCode(err))
}

func TestRunSetRejectsInvalidBackupDestination(t *testing.T) {
	cfg = config.DefaultConfig()

	cmd := newSetCommand()
	require.NoError(t, cmd.Flags().Set("vm", "web01"))
	require.NoError(t, cmd.Flags().Set("mode", "hybrid"))
	require.NoError(t, cmd.Flags().Set("backup-dest", "ftp://backups/ahub"))

	err := runSet(cmd, nil)

	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeConfiguration))
	assert.Equal(t, ahuberrors.ExitConfiguration, ahuberrors.GetExitCode(err))
}

func TestApplySetOverrides(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Azure.ResourceGroup = "from-config"

	cmd := newSetCommand()
	require.NoError(t, cmd.Flags().Set("resource-group", "rg-web"))
	require.NoError(t, cmd.Flags().Set("backup-dest", "s3://ahub-backups/prod"))

	applySetOverrides(cmd)

	assert.Equal(t, "rg-web", cfg.Azure.ResourceGroup)
	assert.Equal(t, "s3://ahub-backups/prod", cfg.Backup.Destination)
	assert.Equal(t, "json", cfg.Backup.Format, "unset flags keep the configured value")
}

func TestNewFormatterRejectsUnknownFormat(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Output.Format = "xml"

	_, err := newFormatter()
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeValidation))
}

func TestStorageOptionsFromConfig(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Storage.Azure.AccountKey = "a2V5"
	cfg.Storage.S3.Region = "eu-west-1"
	cfg.Storage.S3.Profile = "backup"
	cfg.Storage.GCS.Project = "ops-project"

	opts := storageOptions(nil)

	assert.Equal(t, storage.Options{
		AzureAccountKey: "a2V5",
		S3Region:        "eu-west-1",
		S3Profile:       "backup",
		GCSProject:      "ops-project",
	}, opts)
}

func TestNewLoggerWritesToFile(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Logging.File = filepath.Join(t.TempDir(), "ahub.log")
	cfg.Logging.Format = "json"

	log, closeLog, err := newLogger(newSetCommand())
	require.NoError(t, err)

	log.WithField("operation_id", "op-1").Info("located virtual machine")
	closeLog()

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operation_id":"op-1"`)
	assert.Contains(t, string(data), "located virtual machine")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Logging.Level = "loud"

	_, _, err := newLogger(newListCommand())
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeConfiguration))
}

func TestRunBackupShow(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Output.Format = "json"

	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	writer, err := backup.NewWriter(backend, backup.Options{OperationID: "op-7"})
	require.NoError(t, err)

	location, err := writer.Write(context.Background(), &types.VirtualMachine{
		ID:            "/subscriptions/sub/resourceGroups/rg-web/providers/Microsoft.Compute/virtualMachines/web01",
		Name:          "web01",
		ResourceGroup: "rg-web",
		Location:      "westeurope",
		OSType:        types.OSTypeWindows,
		OSDisk:        types.DiskReference{Name: "web01-os", ManagedDiskID: "/disks/web01-os"},
	})
	require.NoError(t, err)

	cmd := newBackupShowCommand()
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runBackupShow(cmd, []string{location}))
	assert.Contains(t, out.String(), `"web01"`)
	assert.Contains(t, out.String(), "op-7")
}

func TestRunBackupShowMissing(t *testing.T) {
	cfg = config.DefaultConfig()

	cmd := newBackupShowCommand()
	cmd.SetContext(context.Background())

	err := runBackupShow(cmd, []string{filepath.Join(t.TempDir(), "web01", "web01-20240101T000000Z.json")})
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeNotFound))
}
