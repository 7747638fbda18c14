package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// DisplayError formats and displays an error with enhanced formatting
func DisplayError(err error) {
	configureColor()
	fmt.Fprint(os.Stderr, renderError(err))
}

// renderError builds the colored representation of err
func renderError(err error) string {
	var sb strings.Builder

	var ahubErr *AHUBError
	if !stderrors.As(err, &ahubErr) {
		sb.WriteString(color.RedString("Error: %v", err))
		sb.WriteString("\n")
		return sb.String()
	}

	colorFunc := getErrorStyle(ahubErr.Type)

	sb.WriteString(fmt.Sprintf("\n%s\n", colorFunc(ahubErr.Message)))

	if ahubErr.Cause != "" {
		sb.WriteString(fmt.Sprintf("   %s %s\n", color.YellowString("Cause:"), color.HiBlackString(ahubErr.Cause)))
	} else if ahubErr.Err != nil {
		sb.WriteString(fmt.Sprintf("   %s %s\n", color.YellowString("Cause:"), color.HiBlackString(ahubErr.Err.Error())))
	}

	if ahubErr.BackupLocation != "" {
		sb.WriteString(fmt.Sprintf("   %s %s\n", color.CyanString("Backup:"), color.HiWhiteString(ahubErr.BackupLocation)))
	}

	if ahubErr.Environment != "" {
		sb.WriteString(fmt.Sprintf("   %s %s\n", color.CyanString("Environment:"), color.HiBlackString(ahubErr.Environment)))
	}

	if len(ahubErr.Solutions) > 0 {
		sb.WriteString(fmt.Sprintf("\n   %s\n", color.GreenString("Solutions:")))
		for i, solution := range ahubErr.Solutions {
			sb.WriteString(fmt.Sprintf("   %s %s\n", color.HiBlackString(fmt.Sprintf("%d.", i+1)), solution))
		}
	}

	if ahubErr.Verify != "" {
		sb.WriteString(fmt.Sprintf("\n   %s %s\n", color.BlueString("Verify:"), color.HiWhiteString(ahubErr.Verify)))
	}

	if ahubErr.Help != "" {
		sb.WriteString(fmt.Sprintf("   %s %s\n", color.MagentaString("Help:"), color.HiWhiteString(ahubErr.Help)))
	}

	sb.WriteString("\n")
	return sb.String()
}

// getErrorStyle returns the appropriate color function for an error type
func getErrorStyle(errType ErrorType) func(format string, a ...interface{}) string {
	switch errType {
	case ErrorTypeReconciliationFailed, ErrorTypeDeletionFailed:
		return color.New(color.FgRed, color.Bold).SprintfFunc()
	case ErrorTypeNoOp, ErrorTypeConfirmationRequired:
		return color.YellowString
	case ErrorTypeConfiguration, ErrorTypeValidation:
		return color.YellowString
	case ErrorTypeRolledBack:
		return color.MagentaString
	case ErrorTypeNotFound, ErrorTypeAmbiguousName, ErrorTypeUnsupportedGuest:
		return color.CyanString
	default:
		return color.RedString
	}
}

// DisplayWarning shows a warning message with appropriate formatting
func DisplayWarning(w io.Writer, message string) {
	configureColor()
	fmt.Fprintf(w, "Warning: %s\n", color.YellowString(message))
}

// DisplaySuccess shows a success message with appropriate formatting
func DisplaySuccess(w io.Writer, message string) {
	configureColor()
	fmt.Fprintf(w, "Success: %s\n", color.GreenString(message))
}

func configureColor() {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("AHUB_NO_COLOR") != ""

	// Also check viper configuration (set by --no-color flag)
	if getViperBool("output.no_color") {
		noColor = true
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		noColor = true
	}

	color.NoColor = noColor
}

// getViperBool safely gets a boolean value from viper
func getViperBool(key string) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return false
}
