package commands

import (
	"fmt"
	"os"

	"github.com/robgonnella/portsweep/internal/logger"
	"github.com/robgonnella/portsweep/internal/target"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandProps injected props that can be made available to all commands
type CommandProps struct {
	Resolver target.Resolver
}

// Root builds and returns our root command
func Root(props *CommandProps) *cobra.Command {
	var verbose bool
	var silent bool
	var logToFile bool

	cmd := &cobra.Command{
		Use:   "portsweep",
		Short: "Fast concurrent tcp port scanner",
		// silence cobra's own printing, main logs the returned error
		SilenceUsage:  true,
		SilenceErrors: true,
		// This runs before all commands and all sub-commands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// set logging verbosity for all loggers
			zerolog.SetGlobalLevel(zerolog.InfoLevel)

			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if silent {
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}

			if !logToFile {
				return nil
			}

			logFile, ok := viper.Get("log-file").(string)

			if !ok || logFile == "" {
				return fmt.Errorf("invalid log file path: %v", viper.Get("log-file"))
			}

			file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)

			if err != nil {
				return err
			}

			logger.GlobalSetLogFile(file)

			return nil
		},
	}

	// Persistent flags available to all commands
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	cmd.PersistentFlags().BoolVar(&silent, "silent", false, "disables all logging")
	cmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "write logs to the log file instead of stderr")

	cmd.AddCommand(scan(props))
	cmd.AddCommand(history())
	cmd.AddCommand(configure())
	cmd.AddCommand(clear())
	cmd.AddCommand(version())

	return cmd
}
