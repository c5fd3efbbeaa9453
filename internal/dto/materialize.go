package dto

// ── 物化模块 DTO ──

// MaterializeRequest 手动物化请求；start 默认今天，end 默认 start 之后若干天
type MaterializeRequest struct {
	Start string `json:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `json:"end"   binding:"omitempty,datetime=2006-01-02"`
}

// MaterializeMonthRequest 按月物化请求
type MaterializeMonthRequest struct {
	Year  int `json:"year"  binding:"required,min=2000,max=2100"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// MaterializeResponse 物化结果
type MaterializeResponse struct {
	Created int    `json:"created"`
	Start   string `json:"start"`
	End     string `json:"end"`
}
