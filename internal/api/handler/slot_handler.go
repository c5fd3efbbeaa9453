package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// SlotHandler 周期训练模板 HTTP 处理器
type SlotHandler struct {
	slotSvc service.RecurringSlotService
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc service.RecurringSlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// ListSlots 获取赛季下的全部模板
// GET /api/v1/seasons/:id/slots
func (h *SlotHandler) ListSlots(c *gin.Context) {
	seasonID, ok := pathID(c, "赛季")
	if !ok {
		return
	}

	slots, err := h.slotSvc.ListForSeason(c.Request.Context(), seasonID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// CreateSlot 新增模板
// POST /api/v1/seasons/:id/slots
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	seasonID, ok := pathID(c, "赛季")
	if !ok {
		return
	}

	var req dto.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.Create(c.Request.Context(), seasonID, &req, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, slot)
}

// ReplaceSlots 整体替换赛季模板（同一事务内先删后插）
// PUT /api/v1/seasons/:id/slots
func (h *SlotHandler) ReplaceSlots(c *gin.Context) {
	seasonID, ok := pathID(c, "赛季")
	if !ok {
		return
	}

	var req dto.ReplaceSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slots, err := h.slotSvc.ReplaceAll(c.Request.Context(), seasonID, req.Slots, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// UpdateSlot 更新模板
// PUT /api/v1/slots/:id
func (h *SlotHandler) UpdateSlot(c *gin.Context) {
	id, ok := pathID(c, "模板")
	if !ok {
		return
	}

	var req dto.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteSlot 删除模板
// DELETE /api/v1/slots/:id
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	id, ok := pathID(c, "模板")
	if !ok {
		return
	}

	if err := h.slotSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SlotHandler) handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 13001, "训练模板不存在")
	case errors.Is(err, service.ErrSlotInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13002, "训练模板无效", err.Error())
	case errors.Is(err, service.ErrSeasonNotFound):
		response.NotFound(c, 12001, "赛季不存在")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 11001, "球队不存在")
	default:
		response.InternalError(c)
	}
}
