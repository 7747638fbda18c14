package types

import "strings"

// PowerState is the live power status of a VM
type PowerState string

const (
	PowerRunning      PowerState = "running"
	PowerStopped      PowerState = "stopped"
	PowerDeallocated  PowerState = "deallocated"
	PowerStarting     PowerState = "starting"
	PowerStopping     PowerState = "stopping"
	PowerDeallocating PowerState = "deallocating"
	PowerUnknown      PowerState = "unknown"
)

const powerStatePrefix = "PowerState/"

// ParsePowerState maps an instance view status code such as "PowerState/deallocated"
func ParsePowerState(code string) PowerState {
	state := strings.ToLower(strings.TrimPrefix(code, powerStatePrefix))
	switch PowerState(state) {
	case PowerRunning, PowerStopped, PowerDeallocated, PowerStarting, PowerStopping, PowerDeallocating:
		return PowerState(state)
	default:
		return PowerUnknown
	}
}

// IsPowerStateCode reports whether an instance view status code describes power
func IsPowerStateCode(code string) bool {
	return strings.HasPrefix(code, powerStatePrefix)
}

// IsOff returns true for states in which the VM can be deleted without stopping it
func (p PowerState) IsOff() bool {
	return p == PowerStopped || p == PowerDeallocated
}
