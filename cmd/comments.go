package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List and update imported review comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comments for a project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		filter := ports.CommentFilter{}
		filter.ProjectID, _ = cmd.Flags().GetUint64("project")
		filter.Discipline, _ = cmd.Flags().GetString("discipline")
		filter.Status, _ = cmd.Flags().GetString("status")
		filter.Search, _ = cmd.Flags().GetString("search")
		if milestoneID, _ := cmd.Flags().GetUint64("milestone"); milestoneID != 0 {
			filter.MilestoneID = &milestoneID
		}
		if cmd.Flags().Changed("tracked") {
			tracked, _ := cmd.Flags().GetBool("tracked")
			filter.Tracked = &tracked
		}

		comments, err := svc.ListComments(ctx, filter)
		if err != nil {
			logging.Error(ctx, "list comments failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list comments")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSHEET\tDISC\tSTATUS\tTRACKED\tTAG\tRISK\tCOMMENT")
		for _, c := range comments {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%s\t%s\t%s\n",
				c.CommentID, c.Sheet, c.Discipline, c.Status, c.Tracked, c.Tag, c.Risk, truncateText(c.CommentText, 60))
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write comment list")
		}
		return nil
	}),
}

var commentsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update workflow fields on comments",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rawIDs, _ := cmd.Flags().GetUintSlice("id")
		ids := make([]uint64, len(rawIDs))
		for i, id := range rawIDs {
			ids[i] = uint64(id)
		}
		update := commentUpdateFromFlags(cmd)

		if len(ids) == 1 {
			comment, err := svc.UpdateComment(ctx, ids[0], update)
			if err != nil {
				logging.Error(ctx, "update comment failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "update comment")
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated comment #%d status=%s tracked=%t\n",
				comment.CommentID, comment.Status, comment.Tracked); err != nil {
				return errs.Wrap(err, "write update output")
			}
			return nil
		}

		affected, err := svc.BulkUpdateComments(ctx, ids, update)
		if err != nil {
			logging.Error(ctx, "bulk update comments failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "bulk update comments")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated %d comments\n", affected); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

func commentUpdateFromFlags(cmd *cobra.Command) ports.CommentUpdate {
	var update ports.CommentUpdate
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		update.Status = &v
	}
	if cmd.Flags().Changed("tracked") {
		v, _ := cmd.Flags().GetBool("tracked")
		update.Tracked = &v
	}
	if cmd.Flags().Changed("owner") {
		v, _ := cmd.Flags().GetString("owner")
		update.Owner = &v
	}
	if cmd.Flags().Changed("due-date") {
		v, _ := cmd.Flags().GetString("due-date")
		update.DueDate = &v
	}
	if cmd.Flags().Changed("tag") {
		v, _ := cmd.Flags().GetString("tag")
		update.Tag = &v
	}
	if cmd.Flags().Changed("risk") {
		v, _ := cmd.Flags().GetString("risk")
		update.Risk = &v
	}
	if cmd.Flags().Changed("required-response") {
		v, _ := cmd.Flags().GetString("required-response")
		update.RequiredResponse = &v
	}
	return update
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsUpdateCmd)

	commentsListCmd.Flags().Uint64("project", 0, "Project id (required)")
	commentsListCmd.Flags().Uint64("milestone", 0, "Milestone id")
	commentsListCmd.Flags().String("discipline", "", "Filter by discipline code")
	commentsListCmd.Flags().String("status", "", "Filter by workflow status")
	commentsListCmd.Flags().Bool("tracked", false, "Filter by tracked flag")
	commentsListCmd.Flags().String("search", "", "Substring search across text fields")
	_ = commentsListCmd.MarkFlagRequired("project")

	commentsUpdateCmd.Flags().UintSlice("id", nil, "Comment id, repeatable (required)")
	commentsUpdateCmd.Flags().String("status", "", "Workflow status, e.g. Needs Response")
	commentsUpdateCmd.Flags().Bool("tracked", false, "Tracked flag")
	commentsUpdateCmd.Flags().String("owner", "", "Owner")
	commentsUpdateCmd.Flags().String("due-date", "", "Due date, ISO format")
	commentsUpdateCmd.Flags().String("tag", "", "Triage tag")
	commentsUpdateCmd.Flags().String("risk", "", "Risk level: LOW, MED or HIGH")
	commentsUpdateCmd.Flags().String("required-response", "", "Required response text")
	_ = commentsUpdateCmd.MarkFlagRequired("id")
}
