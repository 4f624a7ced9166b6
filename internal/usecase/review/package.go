package review

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

type PackageInput struct {
	ProjectID   uint64
	MilestoneID uint64 // 0 means all milestones
	Discipline  string
	Status      string
	TrackedOnly bool
	// Header is an optional intro block prepended to the package text.
	Header string
}

const missingResponseLine = "Required response: (please respond with proposed resolution)"

// BuildPackage renders the filtered comments as an email-friendly response
// package, grouped by sheet with a running item number.
func (s *Service) BuildPackage(ctx context.Context, input PackageInput) (string, error) {
	comments, err := s.packageComments(ctx, input)
	if err != nil {
		return "", err
	}

	var lines []string
	if header := strings.TrimSpace(input.Header); header != "" {
		lines = append(lines, header, "")
	}

	if len(comments) == 0 {
		return "(No items match your filters.)", nil
	}

	currentSheet := ""
	first := true
	for idx, comment := range comments {
		if first || comment.Sheet != currentSheet {
			currentSheet = comment.Sheet
			first = false
			lines = append(lines, "Sheet: "+currentSheet)
		}

		lines = append(lines, fmt.Sprintf("  %d. %s", idx+1, comment.CommentText))

		var meta []string
		if comment.Subject != "" {
			meta = append(meta, comment.Subject)
		}
		if comment.Author != "" {
			meta = append(meta, "Reviewer: "+comment.Author)
		}
		if comment.DueDate != "" {
			meta = append(meta, "Due: "+comment.DueDate)
		}
		if comment.Tag != "" {
			meta = append(meta, "Tag: "+comment.Tag)
		}
		if len(meta) > 0 {
			lines = append(lines, "     ("+strings.Join(meta, " | ")+")")
		}

		if req := strings.TrimSpace(comment.RequiredResponse); req != "" {
			lines = append(lines, "     Required response: "+req)
		} else {
			lines = append(lines, "     "+missingResponseLine)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "Generated: "+time.Now().UTC().Format(time.RFC3339))
	return strings.Join(lines, "\n"), nil
}

// ExportPackageCSV writes the filtered comments as a CSV table.
func (s *Service) ExportPackageCSV(ctx context.Context, input PackageInput, w io.Writer) error {
	if w == nil {
		return errors.New("writer is required")
	}

	comments, err := s.packageComments(ctx, input)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"ID", "Project ID", "Milestone ID", "Discipline", "Sheet", "Subject",
		"Author", "Created At", "Status", "Owner", "Due Date", "Tag", "Risk",
		"Tracked", "Comment", "Required Response",
	}); err != nil {
		return errs.Wrap(err, "write csv header")
	}

	for _, comment := range comments {
		milestoneID := ""
		if comment.MilestoneID != nil {
			milestoneID = strconv.FormatUint(*comment.MilestoneID, 10)
		}
		if err := writer.Write([]string{
			strconv.FormatUint(comment.CommentID, 10),
			strconv.FormatUint(comment.ProjectID, 10),
			milestoneID,
			comment.Discipline,
			comment.Sheet,
			comment.Subject,
			comment.Author,
			comment.CreatedAt,
			comment.Status,
			comment.Owner,
			comment.DueDate,
			comment.Tag,
			comment.Risk,
			strconv.FormatBool(comment.Tracked),
			comment.CommentText,
			comment.RequiredResponse,
		}); err != nil {
			return errs.Wrap(err, "write csv row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errs.Wrap(err, "flush csv")
	}
	return nil
}

func (s *Service) packageComments(ctx context.Context, input PackageInput) ([]ports.Comment, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	filter := ports.CommentFilter{
		ProjectID:  input.ProjectID,
		Discipline: input.Discipline,
		Status:     input.Status,
	}
	if input.MilestoneID != 0 {
		filter.MilestoneID = &input.MilestoneID
	}
	if input.TrackedOnly {
		tracked := true
		filter.Tracked = &tracked
	}

	comments, err := s.repo.ListComments(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(err, "list comments")
	}

	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].Sheet != comments[j].Sheet {
			return comments[i].Sheet < comments[j].Sheet
		}
		return comments[i].CommentID < comments[j].CommentID
	})
	return comments, nil
}
