package backup

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/storage"
	"github.com/yairfalse/ahub/pkg/types"
)

func testVM() *types.VirtualMachine {
	return &types.VirtualMachine{
		ID:            "/subscriptions/sub/resourceGroups/rg-web/providers/Microsoft.Compute/virtualMachines/web01",
		Name:          "web01",
		ResourceGroup: "rg-web",
		Location:      "westeurope",
		Size:          "Standard_D2s_v3",
		OSType:        types.OSTypeWindows,
		OSDisk: types.DiskReference{
			Name:          "web01-os",
			ManagedDiskID: "/subscriptions/sub/resourceGroups/rg-web/providers/Microsoft.Compute/disks/web01-os",
			Caching:       types.CachingReadWrite,
		},
		DataDisks: []types.DiskReference{
			{Name: "web01-data0", ManagedDiskID: "/disks/web01-data0", Caching: types.CachingReadOnly, SizeGB: 128, LUN: 0},
			{Name: "web01-data1", ManagedDiskID: "/disks/web01-data1", Caching: types.CachingNone, SizeGB: 256, LUN: 1},
		},
		NetworkInterfaces: []types.NetworkInterfaceReference{{ID: "/nics/web01-nic", Primary: true}},
		Tags:              map[string]string{"env": "prod"},
		Raw:               json.RawMessage(`{"name":"web01"}`),
	}
}

type failingBackend struct {
	storage.Backend
	err error
}

func (f failingBackend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", f.err
}

func (f failingBackend) Location(key string) string {
	return "s3://ahub-backups/" + key
}

func TestWriterWriteAndRead(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			backend, err := storage.NewLocalStorage(t.TempDir())
			require.NoError(t, err)

			writer, err := NewWriter(backend, Options{Format: format, OperationID: "op-123"})
			require.NoError(t, err)
			writer.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

			vm := testVM()
			location, err := writer.Write(ctx, vm)
			require.NoError(t, err)
			assert.Equal(t, backend.Location("web01/web01-20240301T123000Z."+format), location)

			env, err := Read(ctx, location, storage.Options{})
			require.NoError(t, err)
			assert.Equal(t, EnvelopeVersion, env.Version)
			assert.Equal(t, "op-123", env.OperationID)
			assert.Equal(t, *vm, env.VM)
		})
	}
}

func TestWriterWriteFailure(t *testing.T) {
	writer, err := NewWriter(failingBackend{err: errors.New("access denied")}, Options{})
	require.NoError(t, err)
	writer.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	_, err = writer.Write(context.Background(), testVM())
	require.Error(t, err)
	assert.True(t, ahuberrors.IsType(err, ahuberrors.ErrorTypeBackupWrite))
	assert.Contains(t, err.Error(), "access denied")
	assert.Contains(t, err.Error(), "s3://ahub-backups/web01/web01-20240301T123000Z.json")
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewWriter(nil, Options{Format: "xml"})
	assert.Error(t, err)

	w, err := NewWriter(nil, Options{Format: "YML"})
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, w.format)
}

func TestKey(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "db02/db02-20240102T020405Z.yaml", Key("db02", ts, FormatYAML))
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version": 99}`), FormatJSON)
	assert.Error(t, err)
}

func TestFormatFromKey(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromKey("web01/web01.yml"))
	assert.Equal(t, FormatYAML, FormatFromKey("web01/web01.YAML"))
	assert.Equal(t, FormatJSON, FormatFromKey("web01/web01.json"))
}
