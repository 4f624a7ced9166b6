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

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Inspect import batches",
}

var batchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List import batches for a project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectID, _ := cmd.Flags().GetUint64("project")
		batches, err := svc.ListImportBatches(ctx, projectID)
		if err != nil {
			logging.Error(ctx, "list import batches failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list import batches")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREF\tFILE\tROWS\tINSERTED\tSKIPPED\tIMPORTED AT")
		for _, b := range batches {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
				b.BatchID, b.BatchRef, b.SourceFilename, b.RowCount, b.InsertedCount, b.SkippedCount, b.ImportedAt)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write batch list")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(batchesCmd)
	batchesCmd.AddCommand(batchesListCmd)

	batchesListCmd.Flags().Uint64("project", 0, "Project id (required)")
	_ = batchesListCmd.MarkFlagRequired("project")
}
