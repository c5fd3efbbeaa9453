package dto

// ── 日历模块 DTO ──

// CalendarQuery 日历查询参数
// start/end 兼容前端日历组件传入的完整 ISO 时间，只取日期部分
type CalendarQuery struct {
	Start  string `form:"start"`
	End    string `form:"end"`
	TeamID string `form:"team_id" binding:"omitempty,uuid"`
}

// CalendarEvent 日历事件
type CalendarEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Venue     string `json:"venue"`
	Notes     string `json:"notes,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	TeamColor string `json:"team_color"`
	Version   int    `json:"version"`
}
