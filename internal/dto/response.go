package dto

// 接口中日期与时间的统一格式
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// IDResponse 仅返回 ID 的响应
type IDResponse struct {
	ID string `json:"id"`
}
