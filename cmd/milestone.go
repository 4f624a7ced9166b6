package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage review milestones",
}

var milestoneCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a milestone for a project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectID, _ := cmd.Flags().GetUint64("project")
		name, _ := cmd.Flags().GetString("name")
		targetDate, _ := cmd.Flags().GetString("target-date")

		milestone, err := svc.CreateMilestone(ctx, review.CreateMilestoneInput{
			ProjectID:  projectID,
			Name:       name,
			TargetDate: targetDate,
		})
		if err != nil {
			logging.Error(ctx, "create milestone failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create milestone")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created milestone #%d: %s\n", milestone.MilestoneID, milestone.Name); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var milestoneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List milestones for a project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectID, _ := cmd.Flags().GetUint64("project")
		milestones, err := svc.ListMilestones(ctx, projectID)
		if err != nil {
			logging.Error(ctx, "list milestones failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list milestones")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTARGET DATE")
		for _, m := range milestones {
			fmt.Fprintf(w, "%d\t%s\t%s\n", m.MilestoneID, m.Name, m.TargetDate)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write milestone list")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(milestoneCmd)
	milestoneCmd.AddCommand(milestoneCreateCmd)
	milestoneCmd.AddCommand(milestoneListCmd)

	milestoneCreateCmd.Flags().Uint64("project", 0, "Project id (required)")
	milestoneCreateCmd.Flags().String("name", "", "Milestone name, e.g. 50% DD (required)")
	milestoneCreateCmd.Flags().String("target-date", "", "Target date, ISO format")
	_ = milestoneCreateCmd.MarkFlagRequired("project")
	_ = milestoneCreateCmd.MarkFlagRequired("name")

	milestoneListCmd.Flags().Uint64("project", 0, "Project id (required)")
	_ = milestoneListCmd.MarkFlagRequired("project")
}
