package review

import (
	"strings"
	"time"
)

// statusColumns are probed directly rather than mapped; markup status is
// informational only and not part of the canonical mapping.
var statusColumns = []string{"Status", "State", "status_raw"}

// NormalizedComment is the fixed-shape record derived from one RawRow.
// Untyped header-keyed maps stop at this boundary. CreatedAt is the parsed
// instant in RFC3339 UTC, or "" when the source value did not parse; a
// parse miss is a normal outcome, not an error.
type NormalizedComment struct {
	Sheet       string
	Author      string
	Subject     string
	CommentText string
	CreatedRaw  string
	CreatedAt   string
	Discipline  string
	MarkupID    string
	StatusRaw   string
	Fingerprint string
}

// Importable reports whether the row is eligible for insertion. Rows with
// an empty comment text never reach the store and count as neither
// inserted nor skipped.
func (c NormalizedComment) Importable() bool {
	return c.CommentText != ""
}

// Normalize applies the column mapping to one raw row and computes its
// fingerprint. An unmapped field reads as empty. When disciplineDefault is
// blank the discipline is inferred from the sheet number.
func Normalize(row RawRow, mapping Mapping, projectID uint64, milestoneID uint64, disciplineDefault string) NormalizedComment {
	sheet := strings.TrimSpace(row.Get(mapping.Sheet))
	author := strings.TrimSpace(row.Get(mapping.Author))
	subject := strings.TrimSpace(row.Get(mapping.Subject))
	commentText := strings.TrimSpace(row.Get(mapping.Comment))
	markupID := strings.TrimSpace(row.Get(mapping.MarkupID))
	createdRaw := strings.TrimSpace(row.Get(mapping.CreatedAt))

	createdAt := ""
	if t, ok := ParseDateTime(createdRaw); ok {
		createdAt = t.UTC().Format(time.RFC3339)
	}

	discipline := strings.TrimSpace(disciplineDefault)
	if discipline == "" {
		discipline = InferDiscipline(sheet)
	}

	statusRaw := ""
	for _, col := range statusColumns {
		if v := strings.TrimSpace(row.Get(col)); v != "" {
			statusRaw = v
			break
		}
	}

	fp := Fingerprint(projectID, milestoneID, row, Identity{
		Sheet:    sheet,
		Author:   author,
		Subject:  subject,
		Created:  createdRaw,
		Comment:  commentText,
		MarkupID: markupID,
	})

	return NormalizedComment{
		Sheet:       sheet,
		Author:      author,
		Subject:     subject,
		CommentText: commentText,
		CreatedRaw:  createdRaw,
		CreatedAt:   createdAt,
		Discipline:  discipline,
		MarkupID:    markupID,
		StatusRaw:   statusRaw,
		Fingerprint: fp,
	}
}
