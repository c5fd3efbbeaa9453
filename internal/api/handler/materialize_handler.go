package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// MaterializeHandler 手动物化 HTTP 处理器
type MaterializeHandler struct {
	materializeSvc service.MaterializeService
}

// NewMaterializeHandler 创建 MaterializeHandler
func NewMaterializeHandler(materializeSvc service.MaterializeService) *MaterializeHandler {
	return &MaterializeHandler{materializeSvc: materializeSvc}
}

// Materialize 按日期范围生成训练课
// POST /api/v1/materialize
func (h *MaterializeHandler) Materialize(c *gin.Context) {
	var req dto.MaterializeRequest
	// 请求体可为空，使用默认范围
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	resp, err := h.materializeSvc.MaterializeRange(c.Request.Context(), &req)
	if err != nil {
		h.handleMaterializeError(c, err)
		return
	}

	response.OK(c, resp)
}

// MaterializeMonth 生成指定月份的训练课
// POST /api/v1/materialize/month
func (h *MaterializeHandler) MaterializeMonth(c *gin.Context) {
	var req dto.MaterializeMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.materializeSvc.MaterializeMonth(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.handleMaterializeError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *MaterializeHandler) handleMaterializeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMaterializeRangeInvalid):
		response.BadRequest(c, 15001, "物化日期范围无效")
	case errors.Is(err, service.ErrMaterializeBusy):
		response.Conflict(c, 15002, "物化任务正在执行，请稍后重试")
	default:
		response.InternalError(c)
	}
}
