package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/robgonnella/portsweep/internal/config"
	"github.com/robgonnella/portsweep/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// creates and returns the "config" command
func configure() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scan defaults",
	}

	cmd.AddCommand(configInit())
	cmd.AddCommand(configShow())

	return cmd
}

func configInit() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile := viper.GetString("config-file")

			if _, err := os.Stat(configFile); err == nil && !force {
				return fmt.Errorf("config file already exists: %s", configFile)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := config.Write(*config.Default()); err != nil {
				return err
			}

			logger.New().Info().Str("path", configFile).Msg("wrote config file")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func configShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective scan defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(viper.GetString("config-file"))

			if err != nil {
				return err
			}

			data, err := yaml.Marshal(conf)

			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}
}
