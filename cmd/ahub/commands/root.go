package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ahuberrors "github.com/yairfalse/ahub/internal/errors"
	"github.com/yairfalse/ahub/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ahub",
	Short: "Switch Azure Windows VMs between Hybrid Use Benefit and standard licensing",
	Long: `ahub moves an Azure Windows virtual machine between Azure Hybrid Use
Benefit (bring your own license) and standard pay-as-you-go licensing.

The license type of an existing VM can only be changed by recreating it, so
ahub backs up the full VM description, deletes the VM while keeping its
disks and network interfaces, and recreates it from the same disks with the
new license. If recreation fails the original license is restored.

  ahub list                                   # license mode of every VM
  ahub set --vm web01 --mode hybrid --force   # switch web01 to Hybrid Use Benefit
  ahub set --vm web01 --mode standard --dry-run
  ahub backup show ~/.ahub/backups/web01/web01-20240101T000000Z.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			runVersion(cmd, []string{})
			return nil
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command and exits with the code for the error, if any
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ahuberrors.DisplayError(err)
		os.Exit(ahuberrors.GetExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ahub/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging (JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("subscription", "", "Azure subscription ID (default from config or az CLI)")
	rootCmd.PersistentFlags().Bool("version", false, "show version information")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("azure.subscription_id", rootCmd.PersistentFlags().Lookup("subscription"))

	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newSetCommand())
	rootCmd.AddCommand(newBackupCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return ahuberrors.ConfigurationError("failed to load configuration", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return ahuberrors.ConfigurationError("failed to expand config paths", err)
	}

	if cfg.Output.NoColor {
		color.NoColor = true
	}

	return nil
}

func usageError(format string, a ...interface{}) error {
	return ahuberrors.ValidationError("", fmt.Sprintf(format, a...))
}
