package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeNotFound             ErrorType = "NotFound"
	ErrorTypeAmbiguousName        ErrorType = "AmbiguousName"
	ErrorTypeUnsupportedGuest     ErrorType = "UnsupportedGuest"
	ErrorTypeNoOp                 ErrorType = "NoOp"
	ErrorTypeConfirmationRequired ErrorType = "ConfirmationRequired"
	ErrorTypeBackupWrite          ErrorType = "BackupWrite"
	ErrorTypeStopFailed           ErrorType = "StopFailed"
	ErrorTypeDeletionFailed       ErrorType = "DeletionFailed"
	ErrorTypeRolledBack           ErrorType = "RolledBack"
	ErrorTypeReconciliationFailed ErrorType = "ReconciliationFailed"
	ErrorTypeConfiguration        ErrorType = "Configuration"
	ErrorTypeValidation           ErrorType = "Validation"
	ErrorTypeProvider             ErrorType = "Provider"
)

// AHUBError represents a user-facing error with actionable guidance
type AHUBError struct {
	Type           ErrorType
	VMName         string
	Message        string
	Cause          string
	Solutions      []string
	Verify         string
	Help           string
	BackupLocation string
	Environment    string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *AHUBError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)
	if e.Cause != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Cause)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.BackupLocation != "" {
		sb.WriteString(fmt.Sprintf(" (backup: %s)", e.BackupLocation))
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *AHUBError) Unwrap() error {
	return e.Err
}

// Is matches any AHUBError of the same type
func (e *AHUBError) Is(target error) bool {
	t, ok := target.(*AHUBError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Format implements fmt.Formatter for custom formatting
func (e *AHUBError) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprintf(f, "%s", e.Error())
	case 'v':
		if f.Flag('+') {
			// Verbose mode includes type and VM
			fmt.Fprintf(f, "[%s/%s] %s", e.Type, e.VMName, e.Error())
		} else {
			fmt.Fprintf(f, "%s", e.Error())
		}
	case 'q':
		fmt.Fprintf(f, "%q", e.Error())
	}
}

// New creates a new AHUBError
func New(errType ErrorType, vmName string, message string) *AHUBError {
	return &AHUBError{
		Type:        errType,
		VMName:      vmName,
		Message:     message,
		Environment: detectEnvironment(),
	}
}

// Wrap creates a new AHUBError around an underlying error
func Wrap(errType ErrorType, vmName string, err error, message string) *AHUBError {
	e := New(errType, vmName, message)
	e.Err = err
	return e
}

// WithCause adds cause information
func (e *AHUBError) WithCause(cause string) *AHUBError {
	e.Cause = cause
	return e
}

// WithSolutions adds solution steps
func (e *AHUBError) WithSolutions(solutions ...string) *AHUBError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithVerify adds verification command
func (e *AHUBError) WithVerify(verify string) *AHUBError {
	e.Verify = verify
	return e
}

// WithHelp adds help command
func (e *AHUBError) WithHelp(help string) *AHUBError {
	e.Help = help
	return e
}

// WithBackup records where the pre-change descriptor was saved
func (e *AHUBError) WithBackup(location string) *AHUBError {
	e.BackupLocation = location
	return e
}

// detectEnvironment detects the current environment
func detectEnvironment() string {
	ciVars := []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "TF_BUILD", "JENKINS_HOME"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return "CI/CD detected"
		}
	}

	if os.Getenv("AZUREPS_HOST_ENVIRONMENT") != "" || os.Getenv("ACC_CLOUD") != "" {
		return "Azure Cloud Shell detected"
	}

	return "Development workstation detected"
}

// TypeOf returns the error type of err, or "" if err is not an AHUBError
func TypeOf(err error) ErrorType {
	var ahubErr *AHUBError
	if stderrors.As(err, &ahubErr) {
		return ahubErr.Type
	}
	return ""
}

// IsType checks if err is an AHUBError of the given type
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// Exit codes returned by the CLI
const (
	ExitOK                   = 0
	ExitGeneric              = 1
	ExitNotFound             = 2
	ExitUnsupportedGuest     = 3
	ExitNoOp                 = 4
	ExitRolledBack           = 6
	ExitProviderFailure      = 69 // EX_UNAVAILABLE
	ExitReconciliationFailed = 70 // EX_SOFTWARE
	ExitBackupWrite          = 74 // EX_IOERR
	ExitConfiguration        = 78 // EX_CONFIG
)

// GetExitCode returns appropriate exit code for error type
func GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch TypeOf(err) {
	case ErrorTypeNotFound, ErrorTypeAmbiguousName:
		return ExitNotFound
	case ErrorTypeUnsupportedGuest:
		return ExitUnsupportedGuest
	case ErrorTypeNoOp:
		return ExitNoOp
	case ErrorTypeBackupWrite:
		return ExitBackupWrite
	case ErrorTypeStopFailed, ErrorTypeDeletionFailed:
		return ExitProviderFailure
	case ErrorTypeRolledBack:
		return ExitRolledBack
	case ErrorTypeReconciliationFailed:
		return ExitReconciliationFailed
	case ErrorTypeConfiguration:
		return ExitConfiguration
	default:
		// includes ConfirmationRequired, which has no dedicated code
		return ExitGeneric
	}
}
