package review

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	domainreview "github.com/ajschmidt2/bluebeam-consolidator/internal/domain/review"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

// defaultStatus is the workflow status assigned to every newly imported
// comment.
const defaultStatus = "Open"

type ImportCSVInput struct {
	ProjectID      uint64
	MilestoneID    uint64 // 0 means no milestone
	SourceFilename string
	Discipline     string
	Raw            []byte
	// MappingOverride pins source columns per field on top of the
	// inferred mapping; empty entries defer to inference.
	MappingOverride domainreview.Mapping
	// Aliases replaces the default alias table when non-nil.
	Aliases domainreview.AliasTable
	// TrackedDefault overrides the configured tracked flag for new rows.
	TrackedDefault *bool
}

type ImportCSVResult struct {
	BatchID  uint64               `json:"batch_id"`
	BatchRef string               `json:"batch_ref"`
	RowCount int                  `json:"row_count"`
	Inserted int                  `json:"inserted"`
	Skipped  int                  `json:"skipped"`
	Excluded int                  `json:"excluded"`
	Mapping  domainreview.Mapping `json:"mapping"`
	Unmapped []domainreview.Field `json:"unmapped,omitempty"`
}

// ImportCSV runs one import action: decode, infer the column mapping, then
// insert the batch record and all surviving comments in a single
// transaction. A file that fails mid-way leaves no trace; re-running the
// same file afterwards behaves as a first import.
func (s *Service) ImportCSV(ctx context.Context, input ImportCSVInput) (ImportCSVResult, error) {
	if ctx == nil {
		return ImportCSVResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ImportCSVResult{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.review.import"),
		slog.Uint64("project_id", input.ProjectID),
		slog.String("source_filename", input.SourceFilename),
	)

	if _, err := s.repo.GetProject(ctx, input.ProjectID); err != nil {
		return ImportCSVResult{}, errs.Wrap(err, "load project")
	}

	var milestoneID *uint64
	if input.MilestoneID != 0 {
		milestone, err := s.repo.GetMilestone(ctx, input.MilestoneID)
		if err != nil {
			return ImportCSVResult{}, errs.Wrap(err, "load milestone")
		}
		if milestone.ProjectID != input.ProjectID {
			return ImportCSVResult{}, ports.ErrMilestoneNotFound
		}
		milestoneID = &input.MilestoneID
	}

	rows, err := domainreview.ReadRows(input.Raw)
	if err != nil {
		return ImportCSVResult{}, errs.Wrap(err, "decode upload")
	}

	aliases := input.Aliases
	if aliases == nil {
		aliases = domainreview.DefaultAliases()
	}
	mapping := domainreview.InferMapping(rows[0].Columns, aliases).Merge(input.MappingOverride)
	unmapped := mapping.Unmapped()
	if len(unmapped) > 0 {
		logging.Warn(logCtx, "mapping incomplete, unmapped fields read as empty",
			slog.Any("unmapped_fields", unmapped))
	}

	tracked := s.cfg.Import.DefaultTracked
	if input.TrackedDefault != nil {
		tracked = *input.TrackedDefault
	}

	result := ImportCSVResult{
		BatchRef: uuid.NewString(),
		RowCount: len(rows),
		Mapping:  mapping,
		Unmapped: unmapped,
	}

	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		batch, err := s.repo.CreateImportBatch(txCtx, ports.ImportBatch{
			BatchRef:       result.BatchRef,
			ProjectID:      input.ProjectID,
			MilestoneID:    milestoneID,
			SourceFilename: input.SourceFilename,
			Discipline:     input.Discipline,
			RowCount:       len(rows),
		})
		if err != nil {
			return errs.Wrap(err, "create import batch")
		}
		result.BatchID = batch.BatchID

		staged := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			normalized := domainreview.Normalize(row, mapping, input.ProjectID, input.MilestoneID, input.Discipline)
			if !normalized.Importable() {
				result.Excluded++
				continue
			}

			if _, ok := staged[normalized.Fingerprint]; ok {
				result.Skipped++
				continue
			}
			exists, err := s.repo.FingerprintExists(txCtx, normalized.Fingerprint)
			if err != nil {
				return errs.Wrap(err, "check fingerprint")
			}
			if exists {
				result.Skipped++
				continue
			}

			if _, err := s.repo.CreateComment(txCtx, ports.Comment{
				ImportBatchID: batch.BatchID,
				ProjectID:     input.ProjectID,
				MilestoneID:   milestoneID,
				Discipline:    normalized.Discipline,
				Sheet:         normalized.Sheet,
				Subject:       normalized.Subject,
				Author:        normalized.Author,
				CreatedAt:     normalized.CreatedAt,
				CommentText:   normalized.CommentText,
				MarkupID:      normalized.MarkupID,
				StatusRaw:     normalized.StatusRaw,
				Status:        defaultStatus,
				Tracked:       tracked,
				Fingerprint:   normalized.Fingerprint,
			}); err != nil {
				return errs.Wrap(err, "create comment")
			}
			staged[normalized.Fingerprint] = struct{}{}
			result.Inserted++
		}

		if err := s.repo.SetImportBatchCounts(txCtx, batch.BatchID, result.Inserted, result.Skipped); err != nil {
			return errs.Wrap(err, "record batch counts")
		}
		return nil
	})
	if err != nil {
		return ImportCSVResult{}, errs.Wrap(err, "run import transaction")
	}

	if err := s.saveLastMapping(ctx, mapping); err != nil {
		logging.Warn(logCtx, "persist last mapping failed", slog.Any("err", errs.Loggable(err)))
	}

	logging.Info(logCtx, "import completed",
		slog.String("batch_ref", result.BatchRef),
		slog.Int("row_count", result.RowCount),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("excluded", result.Excluded),
	)
	return result, nil
}
