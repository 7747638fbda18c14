package types

import (
	"fmt"
	"strings"
)

// LicenseMode is the billing mode of a VM's operating system
type LicenseMode string

const (
	LicenseHybrid   LicenseMode = "Hybrid"
	LicenseStandard LicenseMode = "Standard"
)

// DefaultHybridMarker is the license type Azure expects for Windows Server Hybrid Use Benefit
const DefaultHybridMarker = "Windows_Server"

// licenseNone is what Azure reports when the license type was explicitly cleared
const licenseNone = "None"

// ParseLicenseMode parses a user supplied mode
func ParseLicenseMode(s string) (LicenseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hybrid", "ahub", "hub":
		return LicenseHybrid, nil
	case "standard", "none", "payg":
		return LicenseStandard, nil
	default:
		return "", fmt.Errorf("unknown license mode %q (expected hybrid or standard)", s)
	}
}

// ModeOf derives the license mode from a provider license type value
func ModeOf(licenseType string) LicenseMode {
	lt := strings.TrimSpace(licenseType)
	if lt == "" || strings.EqualFold(lt, licenseNone) {
		return LicenseStandard
	}
	return LicenseHybrid
}

// Marker returns the license type to submit for the mode
func (m LicenseMode) Marker(hybridMarker string) string {
	if m != LicenseHybrid {
		return ""
	}
	if hybridMarker == "" {
		return DefaultHybridMarker
	}
	return hybridMarker
}

func (m LicenseMode) String() string {
	return string(m)
}
