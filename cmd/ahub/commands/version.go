package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	BuiltBy   = "unknown"
)

// SetVersionInfo updates the version variables with build-time information
func SetVersionInfo(version, commit, buildTime, builtBy string) {
	if version != "" {
		Version = version
	}
	if commit != "" {
		Commit = commit
	}
	if buildTime != "" {
		BuildTime = buildTime
	}
	if builtBy != "" {
		BuiltBy = builtBy
	}
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run:   runVersion,
	}

	cmd.Flags().Bool("short", false, "show only version number")

	return cmd
}

func runVersion(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	short, _ := cmd.Flags().GetBool("short")
	if short {
		fmt.Fprintln(w, Version)
		return
	}

	fmt.Fprintf(w, "ahub version %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", Commit)
	fmt.Fprintf(w, "  built: %s\n", BuildTime)
	fmt.Fprintf(w, "  built by: %s\n", BuiltBy)
}
