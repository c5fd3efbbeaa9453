package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// PlayerHandler 队员 HTTP 处理器
type PlayerHandler struct {
	playerSvc service.PlayerService
}

// NewPlayerHandler 创建 PlayerHandler
func NewPlayerHandler(playerSvc service.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerSvc: playerSvc}
}

// ListPlayers 获取队员列表，可按球队过滤
// GET /api/v1/players
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	var req dto.ListPlayersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	players, err := h.playerSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKList(c, players, len(players))
}

// CreatePlayer 新增队员
// POST /api/v1/players
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req dto.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	player, err := h.playerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlayerNameEmpty):
			response.BadRequest(c, 16002, "队员姓名不能为空")
		case errors.Is(err, service.ErrTeamNotFound):
			response.NotFound(c, 11001, "球队不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, player)
}
