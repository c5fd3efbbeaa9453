package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// NotificationHandler 家长通知绑定 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// Bind 手动绑定家长手机号与 Telegram chat
// POST /api/v1/notifications/bind
func (h *NotificationHandler) Bind(c *gin.Context) {
	var req dto.BindChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.notificationSvc.Bind(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneInvalid):
			response.BadRequest(c, 17001, "手机号格式无效")
		case errors.Is(err, service.ErrPhoneNotRegistered):
			response.NotFound(c, 17002, "该手机号未登记为任何队员的家长电话")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, resp)
}
