package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Classify imported comments with the configured model",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		input := review.TriageInput{}
		input.ProjectID, _ = cmd.Flags().GetUint64("project")
		input.MilestoneID, _ = cmd.Flags().GetUint64("milestone")
		input.Discipline, _ = cmd.Flags().GetString("discipline")
		input.OnlyUntagged, _ = cmd.Flags().GetBool("only-untagged")
		input.Limit, _ = cmd.Flags().GetInt("limit")

		summary, err := svc.TriageComments(ctx, input)
		if err != nil {
			if errors.Is(err, ports.ErrClassifierUnavailable) {
				fmt.Fprintln(cmd.OutOrStdout(), "triage disabled: no OpenAI API key configured")
				return nil
			}
			logging.Error(ctx, "triage failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "triage comments")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "considered=%d classified=%d cache_hits=%d failed=%d\n",
			summary.Considered, summary.Classified, summary.CacheHits, summary.Failed); err != nil {
			return errs.Wrap(err, "write triage output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(triageCmd)

	triageCmd.Flags().Uint64("project", 0, "Project id (required)")
	triageCmd.Flags().Uint64("milestone", 0, "Milestone id")
	triageCmd.Flags().String("discipline", "", "Filter by discipline code")
	triageCmd.Flags().Bool("only-untagged", true, "Skip comments that already carry a tag")
	triageCmd.Flags().Int("limit", 0, "Maximum comments to classify, 0 for no cap")
	_ = triageCmd.MarkFlagRequired("project")
}
