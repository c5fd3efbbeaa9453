package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
)

// ── 球队模块业务错误 ──

var (
	ErrTeamNotFound  = errors.New("球队不存在")
	ErrTeamNameEmpty = errors.New("球队名称不能为空")
)

// TeamService 球队业务接口
type TeamService interface {
	List(ctx context.Context) ([]dto.TeamResponse, error)
	Create(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*dto.TeamResponse, error)
	// Resolve 按名称或模板标题找到球队，不存在时自动创建
	Resolve(ctx context.Context, nameOrTitle string) (*dto.TeamResponse, error)
	EnsureScheduleTeams(ctx context.Context) error
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *teamService) List(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.List(ctx)
	if err != nil {
		s.logger.Error("查询球队列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		result = append(result, *toTeamResponse(&teams[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *teamService) Create(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*dto.TeamResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrTeamNameEmpty
	}

	team := &model.Team{
		Name:     name,
		AgeGroup: trimmedOrNil(req.AgeGroup),
		Gender:   trimmedOrNil(req.Gender),
	}
	team.CreatedBy = &callerID
	team.UpdatedBy = &callerID

	if err := s.repo.Team.Create(ctx, team); err != nil {
		s.logger.Error("创建球队失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toTeamResponse(team), nil
}

// ────────────────────── Resolve ──────────────────────

func (s *teamService) Resolve(ctx context.Context, nameOrTitle string) (*dto.TeamResponse, error) {
	team, err := resolveTeam(ctx, s.repo, nameOrTitle, s.logger)
	if err != nil {
		return nil, err
	}
	return toTeamResponse(team), nil
}

// resolveTeam 规范化名称后精确查找，未找到时创建（不带年龄组和性别）
// 调用方传入事务内的 repo 时，自动创建与物化同属一个事务
func resolveTeam(ctx context.Context, repo *repository.Repository, nameOrTitle string, logger *zap.Logger) (*model.Team, error) {
	label := NormalizeTeamLabel(nameOrTitle)
	if label == "" {
		return nil, ErrTeamNameEmpty
	}

	team, err := repo.Team.GetByName(ctx, label)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("按名称查询球队失败", zap.String("name", label), zap.Error(err))
		return nil, err
	}

	team = &model.Team{Name: label}
	if err := repo.Team.Create(ctx, team); err != nil {
		logger.Error("自动创建球队失败", zap.String("name", label), zap.Error(err))
		return nil, err
	}
	logger.Info("自动创建球队", zap.String("team_id", team.TeamID), zap.String("name", label))
	return team, nil
}

// ────────────────────── EnsureScheduleTeams ──────────────────────

func (s *teamService) EnsureScheduleTeams(ctx context.Context) error {
	return ensureScheduleTeams(ctx, s.repo, s.logger)
}

// ensureScheduleTeams 保证标准球队存在
// 旧名称（如 "U12 girls"）若能映射到尚未存在的标准名称，直接改名而不是新建
func ensureScheduleTeams(ctx context.Context, repo *repository.Repository, logger *zap.Logger) error {
	teams, err := repo.Team.List(ctx)
	if err != nil {
		logger.Error("查询球队列表失败", zap.Error(err))
		return err
	}

	existing := make(map[string]bool, len(teams))
	for _, t := range teams {
		existing[t.Name] = true
	}

	for _, t := range teams {
		target := legacyTeamTarget(t.Name)
		if target == "" || existing[target] {
			continue
		}
		if err := repo.Team.Rename(ctx, t.TeamID, target); err != nil {
			logger.Error("球队改名失败", zap.String("team_id", t.TeamID), zap.Error(err))
			return err
		}
		logger.Info("旧球队名称已规范化",
			zap.String("team_id", t.TeamID),
			zap.String("from", t.Name),
			zap.String("to", target),
		)
		existing[target] = true
	}

	for _, name := range ScheduleTeamNames {
		if existing[name] {
			continue
		}
		if err := repo.Team.Create(ctx, &model.Team{Name: name}); err != nil {
			logger.Error("创建标准球队失败", zap.String("name", name), zap.Error(err))
			return err
		}
		existing[name] = true
	}
	return nil
}

// ────────────────────── 辅助函数 ──────────────────────

func toTeamResponse(t *model.Team) *dto.TeamResponse {
	return &dto.TeamResponse{
		ID:       t.TeamID,
		Name:     t.Name,
		AgeGroup: deref(t.AgeGroup),
		Gender:   deref(t.Gender),
		Color:    TeamColor(t.Name),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
