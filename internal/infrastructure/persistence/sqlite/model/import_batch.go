package model

type ImportBatch struct {
	BatchID        uint64  `gorm:"column:batch_id;primaryKey;autoIncrement"`
	BatchRef       string  `gorm:"column:batch_ref;type:text;not null;uniqueIndex"`
	ProjectID      uint64  `gorm:"column:project_id;not null;index"`
	MilestoneID    *uint64 `gorm:"column:milestone_id;index"`
	SourceFilename string  `gorm:"column:source_filename;type:text;not null"`
	Discipline     string  `gorm:"column:discipline;type:text;not null;index"`
	RowCount       int     `gorm:"column:row_count;not null;default:0"`
	InsertedCount  int     `gorm:"column:inserted_count;not null;default:0"`
	SkippedCount   int     `gorm:"column:skipped_count;not null;default:0"`
	ImportedAt     string  `gorm:"column:imported_at;type:text;not null"`
}

func (ImportBatch) TableName() string {
	return "import_batches"
}
