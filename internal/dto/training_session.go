package dto

// ── 训练课模块 DTO ──

// ListSessionsRequest 训练课查询参数
// 优先使用 start/end；否则按 year/month；都未提供时为当月
type ListSessionsRequest struct {
	Start  string `form:"start"   binding:"omitempty,datetime=2006-01-02"`
	End    string `form:"end"     binding:"omitempty,datetime=2006-01-02"`
	Year   int    `form:"year"    binding:"omitempty,min=2000,max=2100"`
	Month  int    `form:"month"   binding:"omitempty,min=1,max=12"`
	TeamID string `form:"team_id" binding:"omitempty,uuid"`
}

// CreateSessionRequest 手动创建训练课
type CreateSessionRequest struct {
	TeamID    *string `json:"team_id"    binding:"omitempty,uuid"`
	Date      string  `json:"date"       binding:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" binding:"omitempty,hhmm"`
	EndTime   string  `json:"end_time"   binding:"omitempty,hhmm"`
	Notes     string  `json:"notes"      binding:"max=400"`
}

// UpdateSessionRequest 更新训练课（乐观锁）
type UpdateSessionRequest struct {
	TeamID    *string `json:"team_id"    binding:"omitempty,uuid"`
	Date      *string `json:"date"       binding:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" binding:"omitempty,hhmm"`
	EndTime   *string `json:"end_time"   binding:"omitempty,hhmm"`
	Notes     *string `json:"notes"      binding:"omitempty,max=400"`
	Version   int     `json:"version"    binding:"required,min=1"`
}

// SessionResponse 训练课信息响应
type SessionResponse struct {
	ID        string `json:"id"`
	TeamID    string `json:"team_id,omitempty"`
	TeamName  string `json:"team_name,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
	Version   int    `json:"version"`
}
