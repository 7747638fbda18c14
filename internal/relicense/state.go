package relicense

// State is a step of the license switch workflow
type State string

const (
	StateLocated              State = "Located"
	StateValidated            State = "Validated"
	StateBackedUp             State = "BackedUp"
	StateCaptured             State = "Captured"
	StateStopped              State = "Stopped"
	StateDestroyed            State = "Destroyed"
	StateRecreating           State = "Recreating"
	StateRecreated            State = "Recreated"
	StateRolledBack           State = "RolledBack"
	StateReconciliationFailed State = "ReconciliationFailed"
	StatePowerRestored        State = "PowerRestored"
	StatePlanned              State = "Planned"
)

// Terminal reports whether s is the outcome of a run. PowerRestored only
// appears in Result.Transitions after the outcome.
func (s State) Terminal() bool {
	switch s {
	case StateRecreated, StateRolledBack, StateReconciliationFailed, StatePlanned:
		return true
	}
	return false
}

func (s State) String() string {
	return string(s)
}
