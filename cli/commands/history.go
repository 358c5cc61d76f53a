package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	historyPkg "github.com/robgonnella/portsweep/internal/history"
	"github.com/robgonnella/portsweep/internal/logger"
	"github.com/robgonnella/portsweep/internal/report"
	"github.com/robgonnella/portsweep/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openHistory opens the sqlite history archive registered in viper
func openHistory() (*historyPkg.HistoryService, error) {
	dbFile, ok := viper.Get("database-file").(string)

	if !ok || dbFile == "" {
		return nil, errors.New("failed to find database file path config")
	}

	db, err := historyPkg.NewSqliteDatabase(dbFile)

	if err != nil {
		return nil, err
	}

	return historyPkg.NewService(historyPkg.NewSqliteRepo(db)), nil
}

// creates and returns the "history" command
func history() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived scan reports",
	}

	cmd.AddCommand(historyList())
	cmd.AddCommand(historyShow())
	cmd.AddCommand(historyDelete())

	return cmd
}

func historyList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived scan reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := openHistory()

			if err != nil {
				return err
			}

			records, err := service.List()

			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(w, "ID\tTARGET\tADDRESS\tPORTS\tOPEN\tSCANNED")

			for _, r := range records {
				fmt.Fprintf(
					w,
					"%s\t%s\t%s\t%d\t%d\t%s\n",
					r.ID,
					r.Target,
					r.Address,
					len(r.Results),
					r.Open(),
					r.ScannedAt.Local().Format(time.RFC3339),
				)
			}

			return w.Flush()
		},
	}
}

func historyShow() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived scan report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := openHistory()

			if err != nil {
				return err
			}

			record, err := service.Get(args[0])

			if err != nil {
				return err
			}

			format := report.FormatText

			if jsonOut {
				format = report.FormatJSON
			}

			return report.New(format).Print(
				cmd.OutOrStdout(),
				[]*scanner.Report{record.Report()},
			)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print report as json")

	return cmd
}

func historyDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived scan report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := openHistory()

			if err != nil {
				return err
			}

			if err := service.Delete(args[0]); err != nil {
				return err
			}

			logger.New().Info().Str("id", args[0]).Msg("deleted scan report")

			return nil
		},
	}
}
