package model

// Comment rows are created once at import time and mutated only by triage.
// The fingerprint unique index is the store-level dedupe guarantee; a
// re-import of the same content fails the existence check first, and the
// constraint closes the race if two imports ever interleave.
type Comment struct {
	CommentID        uint64  `gorm:"column:comment_id;primaryKey;autoIncrement"`
	ImportBatchID    uint64  `gorm:"column:import_batch_id;not null;index"`
	ProjectID        uint64  `gorm:"column:project_id;not null;index"`
	MilestoneID      *uint64 `gorm:"column:milestone_id;index"`
	Discipline       string  `gorm:"column:discipline;type:text;not null;index"`
	Sheet            string  `gorm:"column:sheet;type:text;not null;index"`
	Subject          string  `gorm:"column:subject;type:text;not null"`
	Author           string  `gorm:"column:author;type:text;not null;index"`
	CreatedAt        string  `gorm:"column:created_at;type:text;not null"`
	CommentText      string  `gorm:"column:comment_text;type:text;not null"`
	MarkupID         string  `gorm:"column:markup_id;type:text;not null"`
	StatusRaw        string  `gorm:"column:status_raw;type:text;not null"`
	Status           string  `gorm:"column:status;type:text;not null;index"`
	Tracked          bool    `gorm:"column:tracked;not null;default:0;index"`
	Owner            string  `gorm:"column:owner;type:text;not null"`
	DueDate          string  `gorm:"column:due_date;type:text;not null"`
	Tag              string  `gorm:"column:tag;type:text;not null;index"`
	Risk             string  `gorm:"column:risk;type:text;not null;index"`
	RequiredResponse string  `gorm:"column:required_response;type:text;not null"`
	Fingerprint      string  `gorm:"column:fingerprint;type:text;not null;uniqueIndex"`
}

func (Comment) TableName() string {
	return "comments"
}
