package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	domainreview "github.com/ajschmidt2/bluebeam-consolidator/internal/domain/review"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect CSV column mappings",
}

var mappingPreviewCmd = &cobra.Command{
	Use:   "preview <file.csv>",
	Short: "Infer the column mapping for a CSV without importing",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		raw, err := os.ReadFile(cmd.Flags().Args()[0])
		if err != nil {
			return errs.Wrap(err, "read csv file")
		}

		var aliases domainreview.AliasTable
		if aliasFile, _ := cmd.Flags().GetString("aliases"); aliasFile != "" {
			aliases, err = domainreview.LoadAliasProfile(aliasFile)
			if err != nil {
				return errs.Wrap(err, "load alias profile")
			}
		}

		preview, err := svc.PreviewMapping(ctx, raw, aliases)
		if err != nil {
			logging.Error(ctx, "preview mapping failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "preview mapping")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "columns: %v\n", preview.Columns)
		encoded, err := yaml.Marshal(preview.Mapping)
		if err != nil {
			return errs.Wrap(err, "encode mapping")
		}
		fmt.Fprint(out, string(encoded))
		if len(preview.Unmapped) > 0 {
			fmt.Fprintf(out, "warning: unmapped fields: %v\n", preview.Unmapped)
		}
		return nil
	}),
}

var mappingLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the mapping used by the most recent import",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		mapping, ok, err := svc.LastMapping(ctx)
		if err != nil {
			logging.Error(ctx, "load last mapping failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load last mapping")
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no import recorded yet")
			return nil
		}

		encoded, err := yaml.Marshal(mapping)
		if err != nil {
			return errs.Wrap(err, "encode mapping")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(encoded))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(mappingCmd)
	mappingCmd.AddCommand(mappingPreviewCmd)
	mappingCmd.AddCommand(mappingLastCmd)

	mappingPreviewCmd.Flags().String("aliases", "", "TOML alias profile overriding header aliases")
}
