package model

import (
	"time"

	"gorm.io/gorm"
)

// 缴费状态
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Payment 月度会费表 — 对应 payments，(player_id, year, month) 唯一
// 金额以最小货币单位（стотинки）存储
type Payment struct {
	PaymentID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	PlayerID    string     `gorm:"type:uuid;not null"                             json:"player_id"`
	Year        int        `gorm:"not null"                                       json:"year"`
	Month       int        `gorm:"not null"                                       json:"month"`
	AmountCents int64      `gorm:"not null;default:0"                             json:"amount_cents"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	PaidAt      *time.Time `                                                      json:"paid_at,omitempty"`
	Note        *string    `gorm:"type:varchar(255)"                              json:"note,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Payment) TableName() string { return "payments" }

// BeforeCreate 生成主键
func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.PaymentID)
	return nil
}

// IsPaid 是否已缴
func (p *Payment) IsPaid() bool { return p.Status == PaymentPaid }
