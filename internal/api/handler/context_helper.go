package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// pathID 读取路径参数 id，为空时写入 400
func pathID(c *gin.Context, what string) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, what+"ID不能为空")
		return "", false
	}
	return id, true
}
