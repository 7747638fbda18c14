package storage

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// Destination schemes
const (
	SchemeFile  = "file"
	SchemeAzure = "azurerm"
	SchemeS3    = "s3"
	SchemeGCS   = "gs"
)

// Options carries the credentials and settings the remote backends need
type Options struct {
	AzureAccountKey string
	AzureCredential azcore.TokenCredential
	S3Region        string
	S3Profile       string
	GCSProject      string
}

// Destination is a parsed backup destination
type Destination struct {
	Scheme string
	// Host is the storage account for azurerm and the bucket for s3/gs
	Host      string
	Container string
	Prefix    string
	Region    string
	// Path is the local directory for file destinations
	Path string
}

// ParseDestination parses a backup destination.
//
//	/var/backups/ahub or file:///var/backups/ahub
//	azurerm://storageaccount/container/prefix
//	s3://bucket/prefix?region=eu-west-1
//	gs://bucket/prefix
func ParseDestination(dest string) (Destination, error) {
	if dest == "" {
		return Destination{}, fmt.Errorf("backup destination is empty")
	}
	if !strings.Contains(dest, "://") {
		return Destination{Scheme: SchemeFile, Path: dest}, nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return Destination{}, fmt.Errorf("invalid backup destination %q: %w", dest, err)
	}

	trimmed := strings.Trim(u.Path, "/")

	switch u.Scheme {
	case SchemeFile:
		if u.Path == "" {
			return Destination{}, fmt.Errorf("file destination %q has no path", dest)
		}
		return Destination{Scheme: SchemeFile, Path: u.Path}, nil

	case SchemeAzure:
		// azurerm://storageaccount/container/prefix
		parts := strings.SplitN(trimmed, "/", 2)
		if u.Host == "" || parts[0] == "" {
			return Destination{}, fmt.Errorf("Azure destination %q needs a storage account and container", dest)
		}
		d := Destination{Scheme: SchemeAzure, Host: u.Host, Container: parts[0]}
		if len(parts) == 2 {
			d.Prefix = parts[1]
		}
		return d, nil

	case SchemeS3:
		if u.Host == "" {
			return Destination{}, fmt.Errorf("S3 destination %q has no bucket", dest)
		}
		return Destination{
			Scheme: SchemeS3,
			Host:   u.Host,
			Prefix: trimmed,
			Region: u.Query().Get("region"),
		}, nil

	case SchemeGCS, "gcs":
		if u.Host == "" {
			return Destination{}, fmt.Errorf("GCS destination %q has no bucket", dest)
		}
		return Destination{Scheme: SchemeGCS, Host: u.Host, Prefix: trimmed}, nil

	default:
		return Destination{}, fmt.Errorf("unsupported backup destination scheme: %s", u.Scheme)
	}
}

// Open returns the backend for a backup destination
func Open(ctx context.Context, dest string, opts Options) (Backend, error) {
	d, err := ParseDestination(dest)
	if err != nil {
		return nil, err
	}
	return openDestination(ctx, d, opts)
}

// OpenLocation splits the full location of a stored artifact into a backend
// and the key that reads it back.
func OpenLocation(ctx context.Context, location string, opts Options) (Backend, string, error) {
	d, err := ParseDestination(location)
	if err != nil {
		return nil, "", err
	}

	var key string
	switch d.Scheme {
	case SchemeFile:
		key = filepath.Base(d.Path)
		d.Path = filepath.Dir(d.Path)
	default:
		key = d.Prefix
		d.Prefix = ""
	}
	if key == "" || key == "." || key == "/" {
		return nil, "", fmt.Errorf("location %q does not name an artifact", location)
	}

	backend, err := openDestination(ctx, d, opts)
	if err != nil {
		return nil, "", err
	}
	return backend, key, nil
}

func openDestination(ctx context.Context, d Destination, opts Options) (Backend, error) {
	switch d.Scheme {
	case SchemeFile:
		return NewLocalStorage(d.Path)

	case SchemeAzure:
		cred, err := AzureBlobCredential(ctx, d.Host, opts.AzureAccountKey, opts.AzureCredential)
		if err != nil {
			return nil, err
		}
		return NewAzureBlobStorage(d.Host, d.Container, d.Prefix, cred)

	case SchemeS3:
		region := d.Region
		if region == "" {
			region = opts.S3Region
		}
		return NewS3Storage(ctx, d.Host, d.Prefix, region, opts.S3Profile)

	case SchemeGCS:
		return NewGCSStorage(ctx, d.Host, d.Prefix, opts.GCSProject)

	default:
		return nil, fmt.Errorf("unsupported backup destination scheme: %s", d.Scheme)
	}
}
