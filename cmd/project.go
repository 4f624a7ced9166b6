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

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		client, _ := cmd.Flags().GetString("client")
		location, _ := cmd.Flags().GetString("location")

		project, err := svc.CreateProject(ctx, review.CreateProjectInput{
			Name:     name,
			Client:   client,
			Location: location,
		})
		if err != nil {
			logging.Error(ctx, "create project failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create project")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created project #%d: %s\n", project.ProjectID, project.Name); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		includeArchived, _ := cmd.Flags().GetBool("all")
		projects, err := svc.ListProjects(ctx, includeArchived)
		if err != nil {
			logging.Error(ctx, "list projects failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list projects")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCLIENT\tLOCATION\tACTIVE")
		for _, p := range projects {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", p.ProjectID, p.Name, p.Client, p.Location, p.IsActive)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write project list")
		}
		return nil
	}),
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive a project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectID, _ := cmd.Flags().GetUint64("project")
		if err := svc.ArchiveProject(ctx, projectID); err != nil {
			logging.Error(ctx, "archive project failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "archive project")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "archived project #%d\n", projectID); err != nil {
			return errs.Wrap(err, "write archive output")
		}
		return nil
	}),
}

var projectRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore an archived project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectID, _ := cmd.Flags().GetUint64("project")
		if err := svc.RestoreProject(ctx, projectID); err != nil {
			logging.Error(ctx, "restore project failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "restore project")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "restored project #%d\n", projectID); err != nil {
			return errs.Wrap(err, "write restore output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectArchiveCmd)
	projectCmd.AddCommand(projectRestoreCmd)

	projectCreateCmd.Flags().String("name", "", "Project name (required)")
	projectCreateCmd.Flags().String("client", "", "Client name")
	projectCreateCmd.Flags().String("location", "", "Project location")
	_ = projectCreateCmd.MarkFlagRequired("name")

	projectListCmd.Flags().Bool("all", false, "Include archived projects")

	projectArchiveCmd.Flags().Uint64("project", 0, "Project id (required)")
	_ = projectArchiveCmd.MarkFlagRequired("project")

	projectRestoreCmd.Flags().Uint64("project", 0, "Project id (required)")
	_ = projectRestoreCmd.MarkFlagRequired("project")
}
