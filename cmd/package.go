package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

const defaultPackageHeader = "Please review and respond to the following items. For each, provide your proposed resolution and indicate whether drawings/specs will be revised."

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Build a consultant response package",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		input := review.PackageInput{}
		input.ProjectID, _ = cmd.Flags().GetUint64("project")
		input.MilestoneID, _ = cmd.Flags().GetUint64("milestone")
		input.Discipline, _ = cmd.Flags().GetString("discipline")
		input.Status, _ = cmd.Flags().GetString("status")
		input.TrackedOnly, _ = cmd.Flags().GetBool("tracked-only")
		input.Header, _ = cmd.Flags().GetString("header")

		if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
			file, err := os.Create(csvPath)
			if err != nil {
				return errs.Wrap(err, "create csv file")
			}
			defer file.Close()

			if err := svc.ExportPackageCSV(ctx, input, file); err != nil {
				logging.Error(ctx, "export package csv failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "export package csv")
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "package exported: %s\n", csvPath); err != nil {
				return errs.Wrap(err, "write package output")
			}
			return nil
		}

		text, err := svc.BuildPackage(ctx, input)
		if err != nil {
			logging.Error(ctx, "build package failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "build package")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
			return errs.Wrap(err, "write package output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(packageCmd)

	packageCmd.Flags().Uint64("project", 0, "Project id (required)")
	packageCmd.Flags().Uint64("milestone", 0, "Milestone id")
	packageCmd.Flags().String("discipline", "", "Filter by discipline code")
	packageCmd.Flags().String("status", "", "Filter by workflow status")
	packageCmd.Flags().Bool("tracked-only", true, "Include tracked comments only")
	packageCmd.Flags().String("header", defaultPackageHeader, "Intro block prepended to the package text")
	packageCmd.Flags().String("csv", "", "Write the package as CSV to this path instead of text")
	_ = packageCmd.MarkFlagRequired("project")
}
