package commands

import (
	"github.com/robgonnella/portsweep/internal/config"
	"github.com/robgonnella/portsweep/internal/core"
	"github.com/robgonnella/portsweep/internal/exception"
	historyPkg "github.com/robgonnella/portsweep/internal/history"
	"github.com/robgonnella/portsweep/internal/report"
	"github.com/robgonnella/portsweep/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flags that fall back to the user config file when not provided
var configurableFlags = []string{
	"threads",
	"timeout",
	"grab",
	"json",
	"randomize",
	"save",
	"output",
}

// creates and returns the "scan" command
func scan(props *CommandProps) *cobra.Command {
	var portSpec string
	var noStdout bool

	cmd := &cobra.Command{
		Use:   "scan <target> [targets...]",
		Short: "Probe tcp ports on one or more hosts, IPs or CIDR blocks",
		Example: "  portsweep scan 192.168.1.10 -p 22,80,8000-8010 --grab\n" +
			"  portsweep scan example.com -p 1-1024 --randomize -o scan.json --json",
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(viper.GetString("config-file"))

			if err != nil {
				return err
			}

			viper.SetDefault("threads", conf.Threads)
			viper.SetDefault("timeout", conf.Timeout)
			viper.SetDefault("grab", conf.Grab)
			viper.SetDefault("json", conf.JSON)
			viper.SetDefault("randomize", conf.Randomize)
			viper.SetDefault("save", conf.Save)
			viper.SetDefault("output", conf.Output)

			for _, name := range configurableFlags {
				if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := config.Config{
				Threads:   viper.GetInt("threads"),
				Timeout:   viper.GetFloat64("timeout"),
				Grab:      viper.GetBool("grab"),
				JSON:      viper.GetBool("json"),
				Randomize: viper.GetBool("randomize"),
				Save:      viper.GetBool("save"),
				Output:    viper.GetString("output"),
			}

			if conf.Threads <= 0 {
				return exception.NewInputError("threads", "must be greater than zero")
			}

			if conf.Timeout <= 0 {
				return exception.NewInputError("timeout", "must be greater than zero")
			}

			var historyService historyPkg.Service

			if conf.Save {
				service, err := openHistory()

				if err != nil {
					return err
				}

				historyService = service
			}

			results := make(chan scanner.PortResult)

			defer close(results)

			tcpScanner := scanner.NewTCPScanner(
				scanner.WithResolver(props.Resolver),
				scanner.WithListener(results),
			)

			appCore := core.New(tcpScanner, props.Resolver, historyService, cmd.OutOrStdout())

			go appCore.LogResults(results)

			format := report.FormatText

			if conf.JSON {
				format = report.FormatJSON
			}

			_, err := appCore.Run(cmd.Context(), core.Job{
				Targets:   args,
				Ports:     portSpec,
				Threads:   conf.Threads,
				Timeout:   conf.TimeoutDuration(),
				Grab:      conf.Grab,
				Randomize: conf.Randomize,
				Format:    format,
				Output:    conf.Output,
				Stdout:    !noStdout,
				Save:      conf.Save,
			})

			return err
		},
	}

	defaults := config.Default()

	cmd.Flags().StringVarP(&portSpec, "ports", "p", "", "ports to scan (e.g. 22,80,443 or 1-1024)")
	cmd.Flags().IntP("threads", "t", defaults.Threads, "number of concurrent probes")
	cmd.Flags().Float64("timeout", defaults.Timeout, "per port timeout in seconds")
	cmd.Flags().Bool("grab", false, "grab banners from open ports")
	cmd.Flags().StringP("output", "o", "", "output file path")
	cmd.Flags().Bool("json", false, "output results as json")
	cmd.Flags().Bool("randomize", false, "randomize port scan order")
	cmd.Flags().Bool("save", false, "archive results in scan history")
	cmd.Flags().BoolVar(&noStdout, "no-stdout", false, "do not print results to stdout")

	cmd.MarkFlagRequired("ports")

	return cmd
}
