package model

import (
	"time"

	"gorm.io/gorm"
)

// TrainingSession 训练课表 — 对应 training_sessions
// (team_id, session_date, start_time) 唯一，物化与手动创建共用该约束
type TrainingSession struct {
	SessionID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	TeamID      *string   `gorm:"type:uuid"                                      json:"team_id,omitempty"`
	SessionDate time.Time `gorm:"type:date;not null"                             json:"session_date"`
	StartTime   string    `gorm:"type:varchar(5);not null;default:''"            json:"start_time"`
	EndTime     string    `gorm:"type:varchar(5);not null;default:''"            json:"end_time"`
	Notes       string    `gorm:"type:varchar(400);not null;default:''"          json:"notes"`
	VersionedModel
}

// TableName 指定表名
func (TrainingSession) TableName() string { return "training_sessions" }

// BeforeCreate 生成主键
func (s *TrainingSession) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SessionID)
	return nil
}

// Key 幂等键
func (s *TrainingSession) Key() string {
	teamID := ""
	if s.TeamID != nil {
		teamID = *s.TeamID
	}
	return SessionKey(teamID, s.SessionDate, s.StartTime)
}

// SessionKey 由球队、日期、开始时间拼成幂等键
func SessionKey(teamID string, date time.Time, startTime string) string {
	return teamID + "|" + date.Format("2006-01-02") + "|" + startTime
}
