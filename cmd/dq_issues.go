package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"surveydq/internal/bootstrap"
	"surveydq/internal/bootstrap/logging"
	"surveydq/internal/errs"
	"surveydq/internal/ports"
	dqusecase "surveydq/internal/usecase/dq"
)

var dqIssuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Inspect and act on tracked data-quality issues",
}

var dqIssuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked issues",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *dqusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		entity, _ := cmd.Flags().GetString("entity")
		issueType, _ := cmd.Flags().GetString("type")
		status, _ := cmd.Flags().GetString("status")

		issues, err := svc.ListIssues(ctx, ports.IssueFilter{
			IssueType:    issueType,
			TargetEntity: entity,
			Status:       status,
		})
		if err != nil {
			logging.Error(ctx, "list issues failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list issues")
		}

		out := cmd.OutOrStdout()
		if len(issues) == 0 {
			fmt.Fprintln(out, "no issues")
			return nil
		}
		for _, issue := range issues {
			fmt.Fprintf(out, "#%d\t%s\t%s\t%s\t%s\t%s\n",
				issue.IssueID, issue.Status, issue.IssueType, issue.TargetEntity,
				issue.Signature[:12], issue.Title,
			)
		}
		return nil
	}),
}

var dqIssuesShowCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show one issue with its member records",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *dqusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		issueID, err := parseIssueID(cmd.Flags().Args())
		if err != nil {
			return err
		}

		issue, members, err := svc.GetIssue(ctx, issueID)
		if err != nil {
			return errs.Wrap(err, "get issue")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "issue #%d (%s)\n", issue.IssueID, issue.Status)
		fmt.Fprintf(out, "  type: %s / %s\n", issue.IssueType, issue.TargetEntity)
		fmt.Fprintf(out, "  title: %s\n", issue.Title)
		fmt.Fprintf(out, "  signature: %s\n", issue.Signature)
		fmt.Fprintf(out, "  keys: %s\n", issue.KeysJSON)
		fmt.Fprintf(out, "  details: %s\n", issue.DetailsJSON)
		fmt.Fprintf(out, "  detected: %s, updated: %s\n", issue.DetectedAt, issue.UpdatedAt)
		if issue.ResolvedAt != nil {
			by := ""
			if issue.ResolvedBy != nil {
				by = " by " + *issue.ResolvedBy
			}
			fmt.Fprintf(out, "  resolved: %s%s\n", *issue.ResolvedAt, by)
		}

		ids := make([]string, 0, len(members))
		for _, id := range members {
			ids = append(ids, strconv.FormatUint(id, 10))
		}
		fmt.Fprintf(out, "  members: [%s]\n", strings.Join(ids, " "))
		return nil
	}),
}

var dqIssuesResolveCmd = &cobra.Command{
	Use:   "resolve <issue-id>",
	Short: "Resolve an open issue",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *dqusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		issueID, err := parseIssueID(cmd.Flags().Args())
		if err != nil {
			return err
		}
		actor, _ := cmd.Flags().GetString("actor")

		changed, err := svc.ResolveIssue(ctx, issueID, actor)
		if err != nil {
			logging.Error(ctx, "resolve issue failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "resolve issue")
		}
		if !changed {
			fmt.Fprintf(cmd.OutOrStdout(), "issue #%d is not open, nothing to resolve\n", issueID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "issue #%d resolved\n", issueID)
		return nil
	}),
}

var dqIssuesMuteCmd = &cobra.Command{
	Use:   "mute <issue-id>",
	Short: "Mute an open issue so later runs never reopen it",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *dqusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		issueID, err := parseIssueID(cmd.Flags().Args())
		if err != nil {
			return err
		}
		actor, _ := cmd.Flags().GetString("actor")

		if err := svc.MuteIssue(ctx, issueID, actor); err != nil {
			logging.Error(ctx, "mute issue failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "mute issue")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "issue #%d muted\n", issueID)
		return nil
	}),
}

func parseIssueID(args []string) (uint64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one issue id argument")
	}
	issueID, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid issue id %q", args[0])
	}
	return issueID, nil
}

func init() {
	dqCmd.AddCommand(dqIssuesCmd)
	dqIssuesCmd.AddCommand(dqIssuesListCmd)
	dqIssuesCmd.AddCommand(dqIssuesShowCmd)
	dqIssuesCmd.AddCommand(dqIssuesResolveCmd)
	dqIssuesCmd.AddCommand(dqIssuesMuteCmd)

	dqIssuesListCmd.Flags().String("entity", "", "Filter by entity type")
	dqIssuesListCmd.Flags().String("type", "", "Filter by issue type")
	dqIssuesListCmd.Flags().String("status", "", "Filter by status: open|resolved|muted")

	dqIssuesResolveCmd.Flags().String("actor", "operator", "Recorded as resolved_by")
	dqIssuesMuteCmd.Flags().String("actor", "operator", "Recorded as the muting actor")
}
