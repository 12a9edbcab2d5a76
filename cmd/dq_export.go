package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"surveydq/internal/bootstrap"
	"surveydq/internal/bootstrap/logging"
	domaindq "surveydq/internal/domain/dq"
	"surveydq/internal/errs"
	"surveydq/internal/ports"
	dqusecase "surveydq/internal/usecase/dq"
)

var dqExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted data-quality issues",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *dqusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		entityRaw, _ := cmd.Flags().GetString("entity")
		issueType, _ := cmd.Flags().GetString("type")
		status, _ := cmd.Flags().GetString("status")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		if entityRaw != "" {
			if _, err := domaindq.ParseEntityType(entityRaw); err != nil {
				return err
			}
		}

		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			format = "json"
		}
		if format != "json" && format != "csv" {
			return fmt.Errorf("unsupported format %q (expected: json or csv)", format)
		}

		var writer io.Writer = cmd.OutOrStdout()
		var closeFn func() error
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return errs.Wrapf(err, "create export file %q", outPath)
			}
			writer = f
			closeFn = f.Close
		}

		count, err := svc.ExportIssues(ctx, ports.IssueFilter{
			IssueType:    issueType,
			TargetEntity: entityRaw,
			Status:       status,
		}, format, writer)
		if err != nil {
			if closeFn != nil {
				_ = closeFn()
			}
			logging.Error(ctx, "export issues failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "export issues")
		}
		if closeFn != nil {
			if err := closeFn(); err != nil {
				return errs.Wrap(err, "close export file")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d issues to %s\n", count, outPath)
		}
		return nil
	}),
}

func init() {
	dqCmd.AddCommand(dqExportCmd)

	dqExportCmd.Flags().String("entity", "", "Filter by entity type")
	dqExportCmd.Flags().String("type", "", "Filter by issue type: duplicate|incomplete|consent|duration|timeliness")
	dqExportCmd.Flags().String("status", "", "Filter by status: open|resolved|muted")
	dqExportCmd.Flags().String("format", "json", "Output format: json|csv")
	dqExportCmd.Flags().String("out", "", "Output file path (default: stdout)")
}
