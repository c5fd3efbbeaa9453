package dto

// ── 球队模块 DTO ──

// CreateTeamRequest 创建球队请求
type CreateTeamRequest struct {
	Name     string  `json:"name"      binding:"required,min=1,max=120"`
	AgeGroup *string `json:"age_group" binding:"omitempty,max=50"`
	Gender   *string `json:"gender"    binding:"omitempty,max=10"`
}

// ResolveTeamRequest 按名称或标题解析球队
type ResolveTeamRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

// TeamResponse 球队信息响应
type TeamResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AgeGroup string `json:"age_group,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Color    string `json:"color"`
}
