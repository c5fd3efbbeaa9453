package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
)

// ── 赛季模块业务错误 ──

var (
	ErrSeasonNotFound    = errors.New("赛季不存在")
	ErrSeasonDateInvalid = errors.New("赛季结束日期不能早于开始日期")
)

// SeasonService 赛季业务接口
type SeasonService interface {
	Create(ctx context.Context, req *dto.CreateSeasonRequest, callerID string) (*dto.SeasonResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SeasonResponse, error)
	// GetActive 当前激活赛季；没有时返回 ErrSeasonNotFound
	GetActive(ctx context.Context) (*dto.SeasonResponse, error)
	List(ctx context.Context) ([]dto.SeasonResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSeasonRequest, callerID string) (*dto.SeasonResponse, error)
	Activate(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
}

type seasonService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSeasonService 创建 SeasonService 实例
func NewSeasonService(repo *repository.Repository, logger *zap.Logger) SeasonService {
	return &seasonService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *seasonService) Create(ctx context.Context, req *dto.CreateSeasonRequest, callerID string) (*dto.SeasonResponse, error) {
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, ErrSeasonDateInvalid
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, ErrSeasonDateInvalid
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, ErrSeasonDateInvalid
	}

	season := &model.Season{
		Name:      strings.TrimSpace(req.Name),
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  req.IsActive,
	}
	season.CreatedBy = &callerID
	season.UpdatedBy = &callerID

	if !req.IsActive {
		if err := s.repo.Season.Create(ctx, season); err != nil {
			s.logger.Error("创建赛季失败", zap.Error(err))
			return nil, err
		}
		return toSeasonResponse(season), nil
	}

	// 创建即激活：ClearActive + Create 放在同一事务
	err = s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Season.ClearActive(ctx); err != nil {
			s.logger.Error("清除激活赛季失败", zap.Error(err))
			return err
		}
		if err := txRepo.Season.Create(ctx, season); err != nil {
			s.logger.Error("创建赛季失败", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("赛季已创建并激活", zap.String("season_id", season.SeasonID), zap.String("name", season.Name))
	return toSeasonResponse(season), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *seasonService) GetByID(ctx context.Context, id string) (*dto.SeasonResponse, error) {
	season, err := s.getSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSeasonResponse(season), nil
}

// ────────────────────── GetActive ──────────────────────

func (s *seasonService) GetActive(ctx context.Context) (*dto.SeasonResponse, error) {
	season, err := s.repo.Season.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeasonNotFound
		}
		s.logger.Error("查询激活赛季失败", zap.Error(err))
		return nil, err
	}
	return toSeasonResponse(season), nil
}

// ────────────────────── List ──────────────────────

func (s *seasonService) List(ctx context.Context) ([]dto.SeasonResponse, error) {
	seasons, err := s.repo.Season.List(ctx)
	if err != nil {
		s.logger.Error("查询赛季列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SeasonResponse, 0, len(seasons))
	for i := range seasons {
		result = append(result, *toSeasonResponse(&seasons[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *seasonService) Update(ctx context.Context, id string, req *dto.UpdateSeasonRequest, callerID string) (*dto.SeasonResponse, error) {
	season, err := s.getSeason(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		season.Name = strings.TrimSpace(*req.Name)
	}
	if req.StartDate != nil {
		if season.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
			return nil, ErrSeasonDateInvalid
		}
	}
	if req.EndDate != nil {
		if season.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
			return nil, ErrSeasonDateInvalid
		}
	}
	if season.StartDate != nil && season.EndDate != nil && season.EndDate.Before(*season.StartDate) {
		return nil, ErrSeasonDateInvalid
	}
	season.UpdatedBy = &callerID

	if err := s.repo.Season.Update(ctx, season); err != nil {
		s.logger.Error("更新赛季失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSeasonResponse(season), nil
}

// ────────────────────── Activate ──────────────────────

// Activate 在一个事务内清除其他激活赛季并激活目标赛季；并发时后提交者生效
func (s *seasonService) Activate(ctx context.Context, id string, callerID string) error {
	season, err := s.getSeason(ctx, id)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Season.ClearActive(ctx); err != nil {
			s.logger.Error("清除激活赛季失败", zap.Error(err))
			return err
		}

		if err := txRepo.Season.SetActive(ctx, season.SeasonID, callerID); err != nil {
			s.logger.Error("激活赛季失败", zap.String("id", id), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("赛季已激活", zap.String("season_id", id), zap.String("caller", callerID))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *seasonService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getSeason(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Season.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除赛季失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 辅助函数 ──────────────────────

func (s *seasonService) getSeason(ctx context.Context, id string) (*model.Season, error) {
	season, err := s.repo.Season.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeasonNotFound
		}
		s.logger.Error("查询赛季失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return season, nil
}

// inTx 在事务中执行 fn；mock 仓储下 tx 为 nil，直接在原 repo 上执行
func (s *seasonService) inTx(ctx context.Context, fn func(txRepo *repository.Repository) error) error {
	return runInTx(ctx, s.repo, s.logger, fn)
}

func runInTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toSeasonResponse(s *model.Season) *dto.SeasonResponse {
	resp := &dto.SeasonResponse{
		ID:        s.SeasonID,
		Name:      s.Name,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
	if s.StartDate != nil {
		resp.StartDate = formatDate(*s.StartDate)
	}
	if s.EndDate != nil {
		resp.EndDate = formatDate(*s.EndDate)
	}
	return resp
}
