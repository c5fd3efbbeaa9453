package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// AttendanceHandler 考勤 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// GetAttendance 获取训练课考勤（含球队内未标记的队员）
// GET /api/v1/sessions/:id/attendance
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	sessionID, ok := pathID(c, "训练课")
	if !ok {
		return
	}

	resp, err := h.attendanceSvc.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, resp)
}

// MarkAttendance 批量标记考勤，可选通知家长
// POST /api/v1/sessions/:id/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	sessionID, ok := pathID(c, "训练课")
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.attendanceSvc.Mark(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, resp)
}

// PlayerStats 队员出勤率
// GET /api/v1/players/:id/attendance-stats
func (h *AttendanceHandler) PlayerStats(c *gin.Context) {
	playerID, ok := pathID(c, "队员")
	if !ok {
		return
	}

	resp, err := h.attendanceSvc.PlayerStats(c.Request.Context(), playerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, resp)
}

// TeamStats 球队各队员出勤率
// GET /api/v1/teams/:id/attendance-stats
func (h *AttendanceHandler) TeamStats(c *gin.Context) {
	teamID, ok := pathID(c, "球队")
	if !ok {
		return
	}

	resp, err := h.attendanceSvc.TeamStats(c.Request.Context(), teamID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "训练课不存在")
	case errors.Is(err, service.ErrPlayerNotFound):
		response.NotFound(c, 16001, "队员不存在")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 11001, "球队不存在")
	case errors.Is(err, service.ErrPlayerNotInTeam):
		response.BadRequest(c, 16003, "队员不属于该训练课的球队")
	default:
		response.InternalError(c)
	}
}
