package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
)

var (
	ErrPlayerNotFound  = errors.New("队员不存在")
	ErrPlayerNameEmpty = errors.New("队员姓名不能为空")
	ErrPlayerNotInTeam = errors.New("队员不属于该训练课的球队")
)

// PlayerService 队员名册
type PlayerService interface {
	List(ctx context.Context, req *dto.ListPlayersRequest) ([]dto.PlayerResponse, error)
	Create(ctx context.Context, req *dto.CreatePlayerRequest, callerID string) (*dto.PlayerResponse, error)
}

type playerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPlayerService 创建 PlayerService 实例
func NewPlayerService(repo *repository.Repository, logger *zap.Logger) PlayerService {
	return &playerService{repo: repo, logger: logger}
}

func (s *playerService) List(ctx context.Context, req *dto.ListPlayersRequest) ([]dto.PlayerResponse, error) {
	players, err := s.repo.Player.List(ctx, req.TeamID)
	if err != nil {
		s.logger.Error("查询队员失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PlayerResponse, 0, len(players))
	for i := range players {
		result = append(result, *toPlayerResponse(&players[i]))
	}
	return result, nil
}

func (s *playerService) Create(ctx context.Context, req *dto.CreatePlayerRequest, callerID string) (*dto.PlayerResponse, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, ErrPlayerNameEmpty
	}

	player := &model.Player{
		FullName:    name,
		TeamID:      trimmedOrNil(req.TeamID),
		ParentPhone: trimmedOrNil(req.ParentPhone),
		Email:       trimmedOrNil(req.Email),
	}
	player.CreatedBy = &callerID
	player.UpdatedBy = &callerID

	if player.TeamID != nil {
		if _, err := s.repo.Team.GetByID(ctx, *player.TeamID); err != nil {
			return nil, ErrTeamNotFound
		}
	}

	if err := s.repo.Player.Create(ctx, player); err != nil {
		s.logger.Error("创建队员失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toPlayerResponse(player), nil
}

func toPlayerResponse(p *model.Player) *dto.PlayerResponse {
	return &dto.PlayerResponse{
		ID:          p.PlayerID,
		FullName:    p.FullName,
		TeamID:      deref(p.TeamID),
		ParentPhone: deref(p.ParentPhone),
		Email:       deref(p.Email),
	}
}
