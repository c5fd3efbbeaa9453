package dto

// ── 会费 DTO ──

// ListPaymentsRequest 月度缴费列表；year/month 缺省为当前月份
type ListPaymentsRequest struct {
	Year   int    `form:"year"    binding:"omitempty,min=2000,max=2100"`
	Month  int    `form:"month"   binding:"omitempty,min=1,max=12"`
	TeamID string `form:"team_id" binding:"omitempty,uuid"`
}

// CreatePaymentRequest 登记某月应缴金额；同一队员同一月份重复提交时覆盖金额与备注
type CreatePaymentRequest struct {
	PlayerID    string  `json:"player_id"    binding:"required,uuid"`
	Year        int     `json:"year"         binding:"required,min=2000,max=2100"`
	Month       int     `json:"month"        binding:"required,min=1,max=12"`
	AmountCents int64   `json:"amount_cents" binding:"min=0"`
	Note        *string `json:"note"         binding:"omitempty,max=255"`
}

// RemindAllRequest 批量催缴；缺省为当前月份
type RemindAllRequest struct {
	Year  int `json:"year"  binding:"omitempty,min=2000,max=2100"`
	Month int `json:"month" binding:"omitempty,min=1,max=12"`
}

// PaymentResponse 缴费记录
type PaymentResponse struct {
	ID          string `json:"id"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name,omitempty"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
	PaidAt      string `json:"paid_at,omitempty"`
	Note        string `json:"note,omitempty"`
	Overdue     bool   `json:"overdue"`
}

// RemindResponse 催缴结果
type RemindResponse struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
}

// PaymentMonthSummary 单月缴费汇总
type PaymentMonthSummary struct {
	Year      int   `json:"year"`
	Month     int   `json:"month"`
	Total     int64 `json:"total"`
	Paid      int64 `json:"paid"`
	Unpaid    int64 `json:"unpaid"`
	PaidCents int64 `json:"paid_cents"`
}
