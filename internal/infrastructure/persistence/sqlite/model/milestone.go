package model

type Milestone struct {
	MilestoneID uint64 `gorm:"column:milestone_id;primaryKey;autoIncrement"`
	ProjectID   uint64 `gorm:"column:project_id;not null;index"`
	Name        string `gorm:"column:name;type:text;not null;index"`
	TargetDate  string `gorm:"column:target_date;type:text;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (Milestone) TableName() string {
	return "milestones"
}
