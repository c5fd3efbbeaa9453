package model

import "time"

// ChatBinding 手机号与 Telegram chat 的绑定 — 对应 chat_bindings
// Phone 为归一化后的号码（末 9 位数字）
type ChatBinding struct {
	Phone   string    `gorm:"type:varchar(20);primaryKey"        json:"phone"`
	ChatID  int64     `gorm:"not null"                           json:"chat_id"`
	BoundAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"bound_at"`
}

// TableName 指定表名
func (ChatBinding) TableName() string { return "chat_bindings" }
