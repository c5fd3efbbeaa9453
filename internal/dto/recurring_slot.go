package dto

// ── 周期训练模板 DTO ──

// SlotRequest 创建 / 更新模板请求
// Weekday: 0=周一 … 6=周日；TeamID 与 Title 至少提供一个
type SlotRequest struct {
	TeamID    *string `json:"team_id"    binding:"omitempty,uuid"`
	Weekday   *int    `json:"weekday"    binding:"required,min=0,max=6"`
	StartTime string  `json:"start_time" binding:"required,hhmm"`
	EndTime   string  `json:"end_time"   binding:"required,hhmm"`
	Venue     *string `json:"venue"      binding:"omitempty,max=50"`
	Title     *string `json:"title"      binding:"omitempty,max=120"`
}

// ReplaceSlotsRequest 整体替换赛季模板
type ReplaceSlotsRequest struct {
	Slots []SlotRequest `json:"slots" binding:"dive"`
}

// SlotResponse 模板信息响应
type SlotResponse struct {
	ID        string `json:"id"`
	SeasonID  string `json:"season_id"`
	TeamID    string `json:"team_id,omitempty"`
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Venue     string `json:"venue,omitempty"`
	Title     string `json:"title,omitempty"`
}
