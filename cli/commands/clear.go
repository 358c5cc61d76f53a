package commands

import (
	"os"

	"github.com/robgonnella/portsweep/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// files removed by "clear" keyed by their viper name
var clearableFiles = []struct {
	key  string
	name string
}{
	{key: "config-file", name: "config file"},
	{key: "log-file", name: "log file"},
	{key: "database-file", name: "scan history"},
}

// creates and returns the "clear" command
func clear() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clears config, log and scan history files",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()

			for _, f := range clearableFiles {
				path, ok := viper.Get(f.key).(string)

				if !ok || path == "" {
					continue
				}

				if err := os.RemoveAll(path); err != nil {
					return err
				}

				log.Info().Str("path", path).Msg("removed " + f.name)
			}

			return nil
		},
	}

	return cmd
}
