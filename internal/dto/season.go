package dto

// ── 赛季模块 DTO ──

// CreateSeasonRequest 创建赛季请求
type CreateSeasonRequest struct {
	Name      string  `json:"name"       binding:"required,min=1,max=120"`
	StartDate *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	IsActive  bool    `json:"is_active"`
}

// UpdateSeasonRequest 更新赛季请求（空字符串表示清空日期）
type UpdateSeasonRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=120"`
	StartDate *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
}

// SeasonResponse 赛季信息响应
type SeasonResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
