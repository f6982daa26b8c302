package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TWRT/task-analyzer/internal/repository"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analysis runs recorded by the service",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", repository.DefaultRunLimit, "number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	db, err := repository.InitDB(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer db.Close()

	runs, err := repository.NewRunRepository(db).List(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No analysis runs recorded yet.")
		return nil
	}

	total := 0
	fmt.Fprintf(out, "%-8s  %-8s  %-8s  %6s  %6s  %6s  %s\n", "RUN", "ENDPOINT", "STATUS", "TASKS", "SCORED", "ERRORS", "WHEN")
	for _, run := range runs {
		total += run.TaskCount
		fmt.Fprintf(out, "%-8s  %-8s  %-8s  %6d  %6d  %6d  %s\n",
			shortID(run.Id),
			run.Endpoint,
			run.Status,
			run.TaskCount,
			run.ScoredCount,
			run.ErrorCount,
			humanize.Time(run.CreatedAt),
		)
	}
	fmt.Fprintf(out, "\n%s run(s), %s task(s) submitted\n", humanize.Comma(int64(len(runs))), humanize.Comma(int64(total)))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
