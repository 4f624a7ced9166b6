package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	domainreview "github.com/ajschmidt2/bluebeam-consolidator/internal/domain/review"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a Bluebeam markup summary CSV",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		path := cmd.Flags().Args()[0]
		raw, err := os.ReadFile(path)
		if err != nil {
			return errs.Wrap(err, "read csv file")
		}

		projectID, _ := cmd.Flags().GetUint64("project")
		milestoneID, _ := cmd.Flags().GetUint64("milestone")
		discipline, _ := cmd.Flags().GetString("discipline")
		mappingFile, _ := cmd.Flags().GetString("mapping")
		aliasFile, _ := cmd.Flags().GetString("aliases")

		input := review.ImportCSVInput{
			ProjectID:      projectID,
			MilestoneID:    milestoneID,
			SourceFilename: filepath.Base(path),
			Discipline:     discipline,
		}
		input.Raw = raw

		if mappingFile != "" {
			override, err := loadMappingFile(mappingFile)
			if err != nil {
				return err
			}
			input.MappingOverride = override
		}
		if aliasFile != "" {
			aliases, err := domainreview.LoadAliasProfile(aliasFile)
			if err != nil {
				return errs.Wrap(err, "load alias profile")
			}
			input.Aliases = aliases
		}
		if cmd.Flags().Changed("tracked") {
			tracked, _ := cmd.Flags().GetBool("tracked")
			input.TrackedDefault = &tracked
		}

		result, err := svc.ImportCSV(ctx, input)
		if err != nil {
			logging.Error(ctx, "import failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "import csv")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "import batch %s\n", result.BatchRef)
		fmt.Fprintf(out, "rows=%d inserted=%d skipped=%d excluded=%d\n",
			result.RowCount, result.Inserted, result.Skipped, result.Excluded)
		if len(result.Unmapped) > 0 {
			fmt.Fprintf(out, "warning: unmapped fields: %v\n", result.Unmapped)
		}
		return nil
	}),
}

func loadMappingFile(path string) (domainreview.Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domainreview.Mapping{}, errs.Wrap(err, "read mapping file")
	}
	var mapping domainreview.Mapping
	if err := yaml.Unmarshal(raw, &mapping); err != nil {
		return domainreview.Mapping{}, errs.Wrap(err, "parse mapping file")
	}
	return mapping, nil
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Uint64("project", 0, "Project id (required)")
	importCmd.Flags().Uint64("milestone", 0, "Milestone id")
	importCmd.Flags().String("discipline", "", "Discipline code override, e.g. A or S")
	importCmd.Flags().String("mapping", "", "YAML file pinning source columns per field")
	importCmd.Flags().String("aliases", "", "TOML alias profile overriding header aliases")
	importCmd.Flags().Bool("tracked", true, "Mark imported comments as tracked")
	_ = importCmd.MarkFlagRequired("project")
}
