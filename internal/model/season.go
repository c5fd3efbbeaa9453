package model

import (
	"time"

	"gorm.io/gorm"
)

// Season 赛季表 — 对应 seasons
// 同一时刻至多一个赛季处于激活状态
type Season struct {
	SeasonID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"season_id"`
	Name      string     `gorm:"type:varchar(120);not null"                     json:"name"`
	StartDate *time.Time `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	IsActive  bool       `gorm:"not null;default:false"                         json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Season) TableName() string { return "seasons" }

// BeforeCreate 生成主键
func (s *Season) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SeasonID)
	return nil
}
