package model

import (
	"time"

	"gorm.io/gorm"
)

// Player 队员表 — 对应 players
type Player struct {
	PlayerID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"player_id"`
	FullName    string  `gorm:"type:varchar(200);not null"                     json:"full_name"`
	TeamID      *string `gorm:"type:uuid;index"                                json:"team_id,omitempty"`
	ParentPhone *string `gorm:"type:varchar(50)"                               json:"parent_phone,omitempty"`
	Email       *string `gorm:"type:varchar(120)"                              json:"email,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Player) TableName() string { return "players" }

// BeforeCreate 生成主键
func (p *Player) BeforeCreate(*gorm.DB) error {
	ensureID(&p.PlayerID)
	return nil
}

// 考勤状态
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

// Attendance 考勤表 — 对应 attendances，(session_id, player_id) 唯一
type Attendance struct {
	AttendanceID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	SessionID    string     `gorm:"type:uuid;not null"                             json:"session_id"`
	PlayerID     string     `gorm:"type:uuid;not null"                             json:"player_id"`
	Status       string     `gorm:"type:varchar(20);not null;default:'absent'"     json:"status"`
	NotedAt      *time.Time `                                                      json:"noted_at,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }

// BeforeCreate 生成主键
func (a *Attendance) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AttendanceID)
	return nil
}
