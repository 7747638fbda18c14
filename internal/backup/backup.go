// Package backup serializes a virtual machine's full description to durable
// storage before anything destructive happens to it.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/internal/storage"
	"github.com/yairfalse/ahub/pkg/config"
	"github.com/yairfalse/ahub/pkg/types"
)

// Supported artifact formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EnvelopeVersion is bumped when the artifact layout changes
const EnvelopeVersion = 1

const timestampLayout = "20060102T150405Z"

// Envelope is the stored backup artifact
type Envelope struct {
	Version     int                  `json:"version" yaml:"version"`
	OperationID string               `json:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at" yaml:"created_at"`
	VM          types.VirtualMachine `json:"virtual_machine" yaml:"virtual_machine"`

	// ProviderDocument carries VM.Raw in YAML artifacts
	ProviderDocument string `json:"-" yaml:"provider_document,omitempty"`
}

// Options configures a Writer
type Options struct {
	Format      string
	OperationID string
}

// Writer writes backup artifacts to a storage backend
type Writer struct {
	backend     storage.Backend
	format      string
	operationID string
	now         func() time.Time
}

// NewWriter creates a writer; an empty format means JSON
func NewWriter(backend storage.Backend, opts Options) (*Writer, error) {
	format, err := config.NormalizeBackupFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	return &Writer{
		backend:     backend,
		format:      format,
		operationID: opts.OperationID,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Write serializes vm and stores it under <vm>/<vm>-<timestamp>.<ext>,
// returning the artifact location. Every failure is a BackupWriteError.
func (w *Writer) Write(ctx context.Context, vm *types.VirtualMachine) (string, error) {
	createdAt := w.now()
	key := Key(vm.Name, createdAt, w.format)

	data, err := Encode(&Envelope{
		Version:     EnvelopeVersion,
		OperationID: w.operationID,
		CreatedAt:   createdAt,
		VM:          *vm,
	}, w.format)
	if err != nil {
		return "", ahuberrors.BackupWriteError(vm.Name, w.backend.Location(key), err)
	}

	location, err := w.backend.Put(ctx, key, data, contentType(w.format))
	if err != nil {
		return "", ahuberrors.BackupWriteError(vm.Name, w.backend.Location(key), err)
	}
	return location, nil
}

// Key returns the storage key of a backup taken at t
func Key(vmName string, t time.Time, format string) string {
	name := fmt.Sprintf("%s-%s.%s", vmName, t.UTC().Format(timestampLayout), format)
	return path.Join(vmName, name)
}

// Encode serializes an envelope in the given format
func Encode(env *Envelope, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal backup: %w", err)
		}
		return data, nil

	case FormatYAML:
		out := *env
		if len(env.VM.Raw) > 0 {
			out.ProviderDocument = string(env.VM.Raw)
		}
		data, err := yaml.Marshal(&out)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal backup: %w", err)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unsupported backup format: %s", format)
	}
}

// Decode parses an artifact in the given format
func Decode(data []byte, format string) (*Envelope, error) {
	var env Envelope

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("failed to parse backup: %w", err)
		}
		// MarshalIndent re-indents the provider document
		if len(env.VM.Raw) > 0 {
			var compact bytes.Buffer
			if err := json.Compact(&compact, env.VM.Raw); err != nil {
				return nil, fmt.Errorf("failed to parse provider document: %w", err)
			}
			env.VM.Raw = compact.Bytes()
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("failed to parse backup: %w", err)
		}
		if env.ProviderDocument != "" {
			env.VM.Raw = json.RawMessage(env.ProviderDocument)
			env.ProviderDocument = ""
		}
	default:
		return nil, fmt.Errorf("unsupported backup format: %s", format)
	}

	if env.Version > EnvelopeVersion {
		return nil, fmt.Errorf("backup version %d is newer than supported version %d", env.Version, EnvelopeVersion)
	}
	return &env, nil
}

// Read loads the artifact at location
func Read(ctx context.Context, location string, opts storage.Options) (*Envelope, error) {
	backend, key, err := storage.OpenLocation(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	return ReadKey(ctx, backend, key)
}

// ReadKey loads the artifact stored under key in backend
func ReadKey(ctx context.Context, backend storage.Backend, key string) (*Envelope, error) {
	data, err := backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatFromKey(key))
}

// FormatFromKey infers the artifact format from its extension
func FormatFromKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func contentType(format string) string {
	if format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
