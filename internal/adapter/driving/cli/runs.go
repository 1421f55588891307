package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/dpfaulkner/redline/internal/adapter/driven/sqlite"
	"github.com/dpfaulkner/redline/internal/config"
)

func runsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled review runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := sqliteadapter.NewDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
				return err
			}

			runs, err := sqliteadapter.NewJournalRepo(db).ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tREPO\tPR\tBOT\tSTARTED\tFINISHED")
			for _, run := range runs {
				finished := "-"
				if run.FinishedAt != nil {
					finished = run.FinishedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					run.ID,
					run.Repo,
					run.PRNumber,
					run.BotLogin,
					run.StartedAt.Format("2006-01-02 15:04:05"),
					finished,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}
