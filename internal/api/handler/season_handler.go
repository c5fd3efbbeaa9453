package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// SeasonHandler 赛季模块 HTTP 处理器
type SeasonHandler struct {
	seasonSvc service.SeasonService
}

// NewSeasonHandler 创建 SeasonHandler
func NewSeasonHandler(seasonSvc service.SeasonService) *SeasonHandler {
	return &SeasonHandler{seasonSvc: seasonSvc}
}

// ListSeasons 获取赛季列表
// GET /api/v1/seasons
func (h *SeasonHandler) ListSeasons(c *gin.Context) {
	seasons, err := h.seasonSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": seasons})
}

// GetSeason 获取赛季详情
// GET /api/v1/seasons/:id
func (h *SeasonHandler) GetSeason(c *gin.Context) {
	id, ok := pathID(c, "赛季")
	if !ok {
		return
	}

	season, err := h.seasonSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSeasonError(c, err)
		return
	}

	response.OK(c, season)
}

// GetCurrentSeason 获取激活赛季
// GET /api/v1/seasons/current
func (h *SeasonHandler) GetCurrentSeason(c *gin.Context) {
	season, err := h.seasonSvc.GetActive(c.Request.Context())
	if err != nil {
		h.handleSeasonError(c, err)
		return
	}

	response.OK(c, season)
}

// CreateSeason 创建赛季
// POST /api/v1/seasons
func (h *SeasonHandler) CreateSeason(c *gin.Context) {
	var req dto.CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	season, err := h.seasonSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSeasonError(c, err)
		return
	}

	response.Created(c, season)
}

// UpdateSeason 更新赛季
// PUT /api/v1/seasons/:id
func (h *SeasonHandler) UpdateSeason(c *gin.Context) {
	id, ok := pathID(c, "赛季")
	if !ok {
		return
	}

	var req dto.UpdateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	season, err := h.seasonSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSeasonError(c, err)
		return
	}

	response.OK(c, season)
}

// ActivateSeason 激活赛季（同时取消其他赛季的激活）
// PUT /api/v1/seasons/:id/activate
func (h *SeasonHandler) ActivateSeason(c *gin.Context) {
	id, ok := pathID(c, "赛季")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.seasonSvc.Activate(c.Request.Context(), id, callerID); err != nil {
		h.handleSeasonError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteSeason 删除赛季
// DELETE /api/v1/seasons/:id
func (h *SeasonHandler) DeleteSeason(c *gin.Context) {
	id, ok := pathID(c, "赛季")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.seasonSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleSeasonError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSeasonError 统一处理赛季模块业务错误
func (h *SeasonHandler) handleSeasonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSeasonNotFound):
		response.NotFound(c, 12001, "赛季不存在")
	case errors.Is(err, service.ErrSeasonDateInvalid):
		response.BadRequest(c, 12002, "赛季日期无效")
	default:
		response.InternalError(c)
	}
}
