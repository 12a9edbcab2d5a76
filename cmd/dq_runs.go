package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"surveydq/internal/bootstrap"
	"surveydq/internal/bootstrap/logging"
	"surveydq/internal/errs"
	dqusecase "surveydq/internal/usecase/dq"
)

var dqRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past detection runs",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *dqusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		entity, _ := cmd.Flags().GetString("entity")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := svc.ListRuns(ctx, entity, limit)
		if err != nil {
			logging.Error(ctx, "list runs failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list runs")
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs")
			return nil
		}
		for _, run := range runs {
			fmt.Fprintf(out, "%s\t%s\t%d records\t%d findings\t%d resolved\t%d skipped\t%s\n",
				run.RunUID, run.EntityType,
				run.RecordCount, run.FindingCount, run.ResolvedCount, run.SkippedCount,
				run.FinishedAt,
			)
		}
		return nil
	}),
}

func init() {
	dqCmd.AddCommand(dqRunsCmd)

	dqRunsCmd.Flags().String("entity", "", "Filter by entity type")
	dqRunsCmd.Flags().Int("limit", 20, "Max runs to list")
}
