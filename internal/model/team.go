package model

import "gorm.io/gorm"

// Team 球队表 — 对应 teams
type Team struct {
	TeamID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	Name     string  `gorm:"type:varchar(120);not null;index"               json:"name"`
	AgeGroup *string `gorm:"type:varchar(50)"                               json:"age_group,omitempty"`
	Gender   *string `gorm:"type:varchar(10)"                               json:"gender,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// BeforeCreate 生成主键
func (t *Team) BeforeCreate(*gorm.DB) error {
	ensureID(&t.TeamID)
	return nil
}
