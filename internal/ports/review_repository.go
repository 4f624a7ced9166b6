package ports

import (
	"context"
	"errors"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrCommentNotFound   = errors.New("comment not found")
)

// Timestamps and dates cross this boundary as RFC3339 / ISO-8601 text;
// "" means absent.

type Project struct {
	ProjectID uint64 `json:"project_id"`
	Name      string `json:"name"`
	Client    string `json:"client"`
	Location  string `json:"location"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type Milestone struct {
	MilestoneID uint64 `json:"milestone_id"`
	ProjectID   uint64 `json:"project_id"`
	Name        string `json:"name"`
	TargetDate  string `json:"target_date"`
	CreatedAt   string `json:"created_at"`
}

// ImportBatch is the audit record of one import action, immutable after the
// import transaction commits. BatchRef is a caller-facing UUID usable before
// the store-assigned id is known.
type ImportBatch struct {
	BatchID        uint64  `json:"batch_id"`
	BatchRef       string  `json:"batch_ref"`
	ProjectID      uint64  `json:"project_id"`
	MilestoneID    *uint64 `json:"milestone_id"`
	SourceFilename string  `json:"source_filename"`
	Discipline     string  `json:"discipline"`
	RowCount       int     `json:"row_count"`
	InsertedCount  int     `json:"inserted_count"`
	SkippedCount   int     `json:"skipped_count"`
	ImportedAt     string  `json:"imported_at"`
}

type Comment struct {
	CommentID        uint64  `json:"comment_id"`
	ImportBatchID    uint64  `json:"import_batch_id"`
	ProjectID        uint64  `json:"project_id"`
	MilestoneID      *uint64 `json:"milestone_id"`
	Discipline       string  `json:"discipline"`
	Sheet            string  `json:"sheet"`
	Subject          string  `json:"subject"`
	Author           string  `json:"author"`
	CreatedAt        string  `json:"created_at"`
	CommentText      string  `json:"comment_text"`
	MarkupID         string  `json:"markup_id"`
	StatusRaw        string  `json:"status_raw"`
	Status           string  `json:"status"`
	Tracked          bool    `json:"tracked"`
	Owner            string  `json:"owner"`
	DueDate          string  `json:"due_date"`
	Tag              string  `json:"tag"`
	Risk             string  `json:"risk"`
	RequiredResponse string  `json:"required_response"`
	Fingerprint      string  `json:"fingerprint"`
}

// CommentFilter narrows ListComments. Zero values mean "no constraint";
// Search is a case-insensitive substring match across comment text, sheet,
// author, tag and required response.
type CommentFilter struct {
	ProjectID   uint64  `json:"project_id"`
	MilestoneID *uint64 `json:"milestone_id"`
	Discipline  string  `json:"discipline"`
	Status      string  `json:"status"`
	Tracked     *bool   `json:"tracked"`
	Search      string  `json:"search"`
}

// CommentUpdate carries field updates; nil pointers leave the field as is.
type CommentUpdate struct {
	Status           *string `json:"status"`
	Tracked          *bool   `json:"tracked"`
	Owner            *string `json:"owner"`
	DueDate          *string `json:"due_date"`
	Tag              *string `json:"tag"`
	Risk             *string `json:"risk"`
	RequiredResponse *string `json:"required_response"`
}

type ReviewReadRepository interface {
	ListProjects(ctx context.Context, includeArchived bool) ([]Project, error)
	GetProject(ctx context.Context, projectID uint64) (Project, error)
	ListMilestones(ctx context.Context, projectID uint64) ([]Milestone, error)
	GetMilestone(ctx context.Context, milestoneID uint64) (Milestone, error)
	ListImportBatches(ctx context.Context, projectID uint64) ([]ImportBatch, error)
	FingerprintExists(ctx context.Context, fingerprint string) (bool, error)
	ListComments(ctx context.Context, filter CommentFilter) ([]Comment, error)
	GetComment(ctx context.Context, commentID uint64) (Comment, error)
	GetSetting(ctx context.Context, key string) (string, bool, error)
}

type ReviewRepository interface {
	ReviewReadRepository
	CreateProject(ctx context.Context, project Project) (Project, error)
	SetProjectActive(ctx context.Context, projectID uint64, active bool) error
	CreateMilestone(ctx context.Context, milestone Milestone) (Milestone, error)
	CreateImportBatch(ctx context.Context, batch ImportBatch) (ImportBatch, error)
	SetImportBatchCounts(ctx context.Context, batchID uint64, inserted int, skipped int) error
	CreateComment(ctx context.Context, comment Comment) (Comment, error)
	UpdateComment(ctx context.Context, commentID uint64, update CommentUpdate) error
	BulkUpdateComments(ctx context.Context, commentIDs []uint64, update CommentUpdate) (int, error)
	SetSetting(ctx context.Context, key string, value string) error
}
