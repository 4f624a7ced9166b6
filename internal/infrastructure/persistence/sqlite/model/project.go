package model

type Project struct {
	ProjectID uint64 `gorm:"column:project_id;primaryKey;autoIncrement"`
	Name      string `gorm:"column:name;type:text;not null;index"`
	Client    string `gorm:"column:client;type:text;not null"`
	Location  string `gorm:"column:location;type:text;not null"`
	IsActive  bool   `gorm:"column:is_active;not null;default:1;index"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (Project) TableName() string {
	return "projects"
}
