package review

import (
	"context"
	"errors"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

var errNoCommentIDs = errors.New("at least one comment id is required")

func (s *Service) ListComments(ctx context.Context, filter ports.CommentFilter) ([]ports.Comment, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.repo.ListComments(ctx, filter)
}

func (s *Service) GetComment(ctx context.Context, commentID uint64) (ports.Comment, error) {
	if ctx == nil {
		return ports.Comment{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Comment{}, errs.Wrap(err, "check context")
	}
	return s.repo.GetComment(ctx, commentID)
}

func (s *Service) UpdateComment(ctx context.Context, commentID uint64, update ports.CommentUpdate) (ports.Comment, error) {
	if ctx == nil {
		return ports.Comment{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Comment{}, errs.Wrap(err, "check context")
	}

	if err := s.repo.UpdateComment(ctx, commentID, update); err != nil {
		return ports.Comment{}, errs.Wrap(err, "update comment")
	}
	return s.repo.GetComment(ctx, commentID)
}

// BulkUpdateComments applies one update to many comments inside a single
// transaction and returns the number of affected rows.
func (s *Service) BulkUpdateComments(ctx context.Context, commentIDs []uint64, update ports.CommentUpdate) (int, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}
	if len(commentIDs) == 0 {
		return 0, errNoCommentIDs
	}

	var affected int
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		n, err := s.repo.BulkUpdateComments(txCtx, commentIDs, update)
		if err != nil {
			return errs.Wrap(err, "bulk update comments")
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "run bulk update transaction")
	}
	return affected, nil
}
