package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	pkgerrors "github.com/anatoli9010/volleyball-club-management/pkg/errors"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// SessionHandler 训练课 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.TrainingSessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.TrainingSessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// ListSessions 按日期范围或月份查询训练课
// GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var req dto.ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sessions, err := h.sessionSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OKList(c, sessions, len(sessions))
}

// GetSession 获取训练课详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c, "训练课")
	if !ok {
		return
	}

	session, err := h.sessionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// CreateSession 手动创建训练课
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// UpdateSession 更新训练课，需携带 version
// PUT /api/v1/sessions/:id
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id, ok := pathID(c, "训练课")
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// DeleteSession 删除训练课
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := pathID(c, "训练课")
	if !ok {
		return
	}

	if err := h.sessionSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSessionError 统一处理训练课模块业务错误
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "训练课不存在")
	case errors.Is(err, service.ErrSessionDuplicate):
		response.Conflict(c, 14002, "该球队在同一日期和开始时间已有训练课")
	case errors.Is(err, service.ErrSessionTimeInvalid):
		response.BadRequest(c, 14003, "训练课结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrSessionRangeInvalid):
		response.BadRequest(c, 14004, "查询日期范围无效")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14005, "训练课已被他人修改，请刷新后重试")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 11001, "球队不存在")
	default:
		response.InternalError(c)
	}
}
