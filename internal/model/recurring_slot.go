package model

import "gorm.io/gorm"

// RecurringSlot 周期训练模板 — 对应 recurring_slots
// 每周 Weekday 在 StartTime-EndTime 进行一次训练；TeamID 为空时按 Title 解析球队
type RecurringSlot struct {
	SlotID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	SeasonID  string  `gorm:"type:uuid;not null;index"                       json:"season_id"`
	TeamID    *string `gorm:"type:uuid"                                      json:"team_id,omitempty"`
	Weekday   int     `gorm:"type:smallint;not null"                         json:"weekday"` // 0=周一 … 6=周日
	StartTime string  `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime   string  `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Venue     *string `gorm:"type:varchar(50)"                               json:"venue,omitempty"`
	Title     *string `gorm:"type:varchar(120)"                              json:"title,omitempty"`
	BaseModel
}

// TableName 指定表名
func (RecurringSlot) TableName() string { return "recurring_slots" }

// BeforeCreate 生成主键
func (s *RecurringSlot) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SlotID)
	return nil
}

// Notes 物化生成训练课时写入的备注：优先场地，其次标题
func (s *RecurringSlot) Notes() string {
	if s.Venue != nil && *s.Venue != "" {
		return *s.Venue
	}
	if s.Title != nil {
		return *s.Title
	}
	return ""
}
