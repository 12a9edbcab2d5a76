package cmd

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"surveydq/internal/bootstrap"
	"surveydq/internal/bootstrap/logging"
	domaindq "surveydq/internal/domain/dq"
	"surveydq/internal/errs"
	dqusecase "surveydq/internal/usecase/dq"
)

var dqRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan one entity type and upsert data-quality issues",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *dqusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		entityRaw, _ := cmd.Flags().GetString("entity")
		limit, _ := cmd.Flags().GetInt("limit")
		noResolve, _ := cmd.Flags().GetBool("no-resolve")
		reportDir, _ := cmd.Flags().GetString("reports")
		noReports, _ := cmd.Flags().GetBool("no-reports")

		entity, err := domaindq.ParseEntityType(entityRaw)
		if err != nil {
			return err
		}

		result, err := svc.Run(ctx, entity, dqusecase.RunOptions{
			Limit:     limit,
			NoResolve: noResolve,
		})
		if err != nil {
			logging.Error(ctx, "detection run failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run detection")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s on %s: %d records, %d findings (%d new, %d updated), %d resolved, %d skipped\n",
			result.RunUID, result.EntityType,
			result.RecordCount, result.FindingCount,
			result.CreatedCount, result.UpdatedCount,
			result.ResolvedCount, result.SkippedCount,
		)

		kinds := make([]string, 0, len(result.CountsByKind))
		for kind := range result.CountsByKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(out, "  %s: %d\n", kind, result.CountsByKind[kind])
		}

		if noReports {
			return nil
		}

		jsonPath, csvPath, err := svc.WriteReports(reportDir, result)
		if err != nil {
			logging.Error(ctx, "write reports failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "write reports")
		}
		fmt.Fprintf(out, "reports: %s %s\n", jsonPath, csvPath)
		return nil
	}),
}

func init() {
	dqCmd.AddCommand(dqRunCmd)

	dqRunCmd.Flags().String("entity", "", "Entity type: household|pregnancy|pregnancy_outcome|death")
	dqRunCmd.Flags().Int("limit", 0, "Max records to scan (0 = all, default from config)")
	dqRunCmd.Flags().Bool("no-resolve", false, "Keep stale open issues instead of auto-resolving them")
	dqRunCmd.Flags().String("reports", "", "Report output directory (default from config)")
	dqRunCmd.Flags().Bool("no-reports", false, "Skip writing report files")
	_ = dqRunCmd.MarkFlagRequired("entity")
}
