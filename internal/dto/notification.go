package dto

// ── 通知模块 DTO ──

// BindChatRequest 手动绑定家长手机号与 Telegram chat
type BindChatRequest struct {
	Phone  string `json:"phone"   binding:"required,min=6,max=50"`
	ChatID int64  `json:"chat_id" binding:"required"`
}

// BindChatResponse 绑定结果
type BindChatResponse struct {
	Phone          string `json:"phone"`
	ChatID         int64  `json:"chat_id"`
	MatchedPlayers int    `json:"matched_players"`
}
