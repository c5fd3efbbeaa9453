package dto

// ── 队员与考勤 DTO ──

// CreatePlayerRequest 创建队员请求
type CreatePlayerRequest struct {
	FullName    string  `json:"full_name"    binding:"required,min=1,max=200"`
	TeamID      *string `json:"team_id"      binding:"omitempty,uuid"`
	ParentPhone *string `json:"parent_phone" binding:"omitempty,max=50"`
	Email       *string `json:"email"        binding:"omitempty,email,max=120"`
}

// ListPlayersRequest 队员查询参数
type ListPlayersRequest struct {
	TeamID string `form:"team_id" binding:"omitempty,uuid"`
}

// PlayerResponse 队员信息响应
type PlayerResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	TeamID      string `json:"team_id,omitempty"`
	ParentPhone string `json:"parent_phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// AttendanceMark 单个队员的考勤
type AttendanceMark struct {
	PlayerID string `json:"player_id" binding:"required,uuid"`
	Status   string `json:"status"    binding:"required,oneof=present absent"`
	Note     string `json:"note"      binding:"max=200"`
}

// MarkAttendanceRequest 批量标记考勤
type MarkAttendanceRequest struct {
	Marks        []AttendanceMark `json:"marks"         binding:"required,min=1,dive"`
	NotifyParent bool             `json:"notify_parent"`
}

// AttendanceEntry 考勤列表中的一行（含未标记的队员）
type AttendanceEntry struct {
	PlayerID string `json:"player_id"`
	FullName string `json:"full_name"`
	Status   string `json:"status,omitempty"`
	NotedAt  string `json:"noted_at,omitempty"`
}

// AttendanceResponse 训练课考勤
type AttendanceResponse struct {
	Session SessionResponse   `json:"session"`
	Entries []AttendanceEntry `json:"entries"`
}

// MarkAttendanceResponse 标记结果
type MarkAttendanceResponse struct {
	Updated  int `json:"updated"`
	Notified int `json:"notified"`
}

// PlayerAttendanceStats 队员出勤统计
type PlayerAttendanceStats struct {
	PlayerID string  `json:"player_id"`
	FullName string  `json:"full_name"`
	Total    int64   `json:"total"`
	Present  int64   `json:"present"`
	Absent   int64   `json:"absent"`
	Percent  float64 `json:"percent"`
}

// TeamAttendanceStats 球队出勤统计，按队员姓名排序
type TeamAttendanceStats struct {
	TeamID   string                  `json:"team_id"`
	TeamName string                  `json:"team_name"`
	Players  []PlayerAttendanceStats `json:"players"`
}
