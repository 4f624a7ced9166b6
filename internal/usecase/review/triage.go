package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

type TriageInput struct {
	ProjectID   uint64 `json:"project_id"`
	MilestoneID uint64 `json:"milestone_id"` // 0 means all milestones
	Discipline  string `json:"discipline"`
	// OnlyUntagged skips comments that already carry a tag.
	OnlyUntagged bool `json:"only_untagged"`
	// Limit caps the number of comments classified in one run; 0 means
	// no cap.
	Limit int `json:"limit"`
}

type TriageSummary struct {
	Considered int `json:"considered"`
	Classified int `json:"classified"`
	CacheHits  int `json:"cache_hits"`
	Failed     int `json:"failed"`
}

// TriageComments classifies imported comments through the external oracle.
// Verdicts are memoized by content so re-running triage never re-spends
// tokens on unchanged comments. A single comment failing to classify is
// logged and skipped; the run keeps going.
func (s *Service) TriageComments(ctx context.Context, input TriageInput) (TriageSummary, error) {
	if ctx == nil {
		return TriageSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return TriageSummary{}, errs.Wrap(err, "check context")
	}
	if !s.classifier.Available() {
		return TriageSummary{}, ports.ErrClassifierUnavailable
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.review.triage"),
		slog.Uint64("project_id", input.ProjectID),
	)

	filter := ports.CommentFilter{ProjectID: input.ProjectID, Discipline: input.Discipline}
	if input.MilestoneID != 0 {
		filter.MilestoneID = &input.MilestoneID
	}
	comments, err := s.repo.ListComments(ctx, filter)
	if err != nil {
		return TriageSummary{}, errs.Wrap(err, "list comments")
	}

	milestoneNames := make(map[uint64]string)
	var summary TriageSummary
	for _, comment := range comments {
		if err := ctx.Err(); err != nil {
			return summary, errs.Wrap(err, "check context")
		}
		if input.OnlyUntagged && comment.Tag != "" {
			continue
		}
		if input.Limit > 0 && summary.Considered >= input.Limit {
			break
		}
		summary.Considered++

		milestoneName := ""
		if comment.MilestoneID != nil {
			name, ok := milestoneNames[*comment.MilestoneID]
			if !ok {
				milestone, err := s.repo.GetMilestone(ctx, *comment.MilestoneID)
				if err == nil {
					name = milestone.Name
				}
				milestoneNames[*comment.MilestoneID] = name
			}
			milestoneName = name
		}

		classifyInput := ports.ClassifyInput{
			CommentText: comment.CommentText,
			Sheet:       comment.Sheet,
			Discipline:  comment.Discipline,
			Milestone:   milestoneName,
		}

		verdict, hit, err := s.cachedVerdict(ctx, classifyInput)
		if err != nil {
			if errors.Is(err, ports.ErrClassifierUnavailable) {
				return summary, err
			}
			summary.Failed++
			logging.Warn(logCtx, "classify comment failed",
				slog.Uint64("comment_id", comment.CommentID),
				slog.Any("err", errs.Loggable(err)))
			continue
		}
		if hit {
			summary.CacheHits++
		}

		if err := s.repo.UpdateComment(ctx, comment.CommentID, ports.CommentUpdate{
			Tracked:          &verdict.Track,
			Tag:              &verdict.Tag,
			Risk:             &verdict.Risk,
			RequiredResponse: &verdict.RequiredResponse,
		}); err != nil {
			summary.Failed++
			logging.Warn(logCtx, "apply verdict failed",
				slog.Uint64("comment_id", comment.CommentID),
				slog.Any("err", errs.Loggable(err)))
			continue
		}
		summary.Classified++
	}

	logging.Info(logCtx, "triage completed",
		slog.Int("considered", summary.Considered),
		slog.Int("classified", summary.Classified),
		slog.Int("cache_hits", summary.CacheHits),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}

// cachedVerdict resolves a verdict from the content-addressed cache, calling
// the classifier only on a miss. The second return reports a cache hit.
func (s *Service) cachedVerdict(ctx context.Context, input ports.ClassifyInput) (ports.TriageResult, bool, error) {
	key := s.verdictCacheKey(input)

	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var verdict ports.TriageResult
		if err := json.Unmarshal([]byte(cached), &verdict); err == nil {
			return verdict, true, nil
		}
		// Unreadable entries are replaced by a fresh classification.
		_ = s.cache.Delete(ctx, key)
	}

	verdict, err := s.classifier.Classify(ctx, input)
	if err != nil {
		return ports.TriageResult{}, false, err
	}

	if raw, err := json.Marshal(verdict); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), 0); err != nil {
			logging.Warn(ctx, "cache verdict failed", slog.Any("err", errs.Loggable(err)))
		}
	}
	return verdict, false, nil
}

// verdictCacheKey hashes everything the classifier sees, model included, so
// a model change invalidates prior verdicts.
func (s *Service) verdictCacheKey(input ports.ClassifyInput) string {
	h := sha256.New()
	for _, part := range []string{
		"triage", s.cfg.OpenAI.Model,
		input.CommentText, input.Sheet, input.Discipline, input.Milestone,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "triage:" + hex.EncodeToString(h.Sum(nil))
}
