package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
)

// ── 周期模板模块业务错误 ──

var (
	ErrSlotNotFound = errors.New("训练模板不存在")
	ErrSlotInvalid  = errors.New("训练模板无效")
)

// SlotInput 创建模板的输入
type SlotInput struct {
	TeamID    *string
	Weekday   int
	StartTime string
	EndTime   string
	Venue     *string
	Title     *string
}

// NewRecurringSlot 模板的唯一构造入口：所有写入前都经过这里校验
// weekday ∈ [0,6]；时间为 HH:MM 且开始早于结束；team_id 与 title 至少一个非空
func NewRecurringSlot(seasonID string, in SlotInput) (*model.RecurringSlot, error) {
	if in.Weekday < 0 || in.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday 必须在 0-6 之间，实际 %d", ErrSlotInvalid, in.Weekday)
	}

	start := strings.TrimSpace(in.StartTime)
	end := strings.TrimSpace(in.EndTime)
	if !dto.IsHHMM(start) {
		return nil, fmt.Errorf("%w: start_time 格式应为 HH:MM，实际 %q", ErrSlotInvalid, in.StartTime)
	}
	if !dto.IsHHMM(end) {
		return nil, fmt.Errorf("%w: end_time 格式应为 HH:MM，实际 %q", ErrSlotInvalid, in.EndTime)
	}
	// 固定宽度 HH:MM 可直接按字符串比较
	if start >= end {
		return nil, fmt.Errorf("%w: start_time 必须早于 end_time", ErrSlotInvalid)
	}

	teamID := trimmedOrNil(in.TeamID)
	title := trimmedOrNil(in.Title)
	if teamID == nil && title == nil {
		return nil, fmt.Errorf("%w: team_id 与 title 至少提供一个", ErrSlotInvalid)
	}

	return &model.RecurringSlot{
		SeasonID:  seasonID,
		TeamID:    teamID,
		Weekday:   in.Weekday,
		StartTime: start,
		EndTime:   end,
		Venue:     trimmedOrNil(in.Venue),
		Title:     title,
	}, nil
}

// slotInputFromRequest DTO → SlotInput；缺少 weekday 时交给构造函数报错
func slotInputFromRequest(req *dto.SlotRequest) SlotInput {
	weekday := -1
	if req.Weekday != nil {
		weekday = *req.Weekday
	}
	return SlotInput{
		TeamID:    req.TeamID,
		Weekday:   weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Venue:     req.Venue,
		Title:     req.Title,
	}
}

// RecurringSlotService 周期模板业务接口
type RecurringSlotService interface {
	ListForSeason(ctx context.Context, seasonID string) ([]dto.SlotResponse, error)
	Create(ctx context.Context, seasonID string, req *dto.SlotRequest, callerID string) (*dto.SlotResponse, error)
	Update(ctx context.Context, slotID string, req *dto.SlotRequest, callerID string) (*dto.SlotResponse, error)
	Delete(ctx context.Context, slotID string) error
	ReplaceAll(ctx context.Context, seasonID string, reqs []dto.SlotRequest, callerID string) ([]dto.SlotResponse, error)
}

type recurringSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRecurringSlotService 创建 RecurringSlotService 实例
func NewRecurringSlotService(repo *repository.Repository, logger *zap.Logger) RecurringSlotService {
	return &recurringSlotService{repo: repo, logger: logger}
}

// ────────────────────── ListForSeason ──────────────────────

func (s *recurringSlotService) ListForSeason(ctx context.Context, seasonID string) ([]dto.SlotResponse, error) {
	if err := s.checkSeason(ctx, seasonID); err != nil {
		return nil, err
	}

	slots, err := s.repo.RecurringSlot.ListBySeason(ctx, seasonID)
	if err != nil {
		s.logger.Error("查询训练模板失败", zap.String("season_id", seasonID), zap.Error(err))
		return nil, err
	}
	return toSlotResponses(slots), nil
}

// ────────────────────── Create ──────────────────────

func (s *recurringSlotService) Create(ctx context.Context, seasonID string, req *dto.SlotRequest, callerID string) (*dto.SlotResponse, error) {
	slot, err := NewRecurringSlot(seasonID, slotInputFromRequest(req))
	if err != nil {
		return nil, err
	}
	if err := s.checkSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, slot.TeamID); err != nil {
		return nil, err
	}

	slot.CreatedBy = &callerID
	slot.UpdatedBy = &callerID
	if err := s.repo.RecurringSlot.Create(ctx, slot); err != nil {
		s.logger.Error("创建训练模板失败", zap.String("season_id", seasonID), zap.Error(err))
		return nil, err
	}
	return toSlotResponse(slot), nil
}

// ────────────────────── Update ──────────────────────

func (s *recurringSlotService) Update(ctx context.Context, slotID string, req *dto.SlotRequest, callerID string) (*dto.SlotResponse, error) {
	existing, err := s.repo.RecurringSlot.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("查询训练模板失败", zap.String("id", slotID), zap.Error(err))
		return nil, err
	}

	slot, err := NewRecurringSlot(existing.SeasonID, slotInputFromRequest(req))
	if err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, slot.TeamID); err != nil {
		return nil, err
	}

	slot.SlotID = existing.SlotID
	slot.BaseModel = existing.BaseModel
	slot.UpdatedBy = &callerID
	if err := s.repo.RecurringSlot.Update(ctx, slot); err != nil {
		s.logger.Error("更新训练模板失败", zap.String("id", slotID), zap.Error(err))
		return nil, err
	}
	return toSlotResponse(slot), nil
}

// ────────────────────── Delete ──────────────────────

func (s *recurringSlotService) Delete(ctx context.Context, slotID string) error {
	if _, err := s.repo.RecurringSlot.GetByID(ctx, slotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("查询训练模板失败", zap.String("id", slotID), zap.Error(err))
		return err
	}
	if err := s.repo.RecurringSlot.Delete(ctx, slotID); err != nil {
		s.logger.Error("删除训练模板失败", zap.String("id", slotID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ReplaceAll ──────────────────────

// ReplaceAll 全部校验通过后才写入；写入本身在仓储层单事务完成
func (s *recurringSlotService) ReplaceAll(ctx context.Context, seasonID string, reqs []dto.SlotRequest, callerID string) ([]dto.SlotResponse, error) {
	slots := make([]model.RecurringSlot, 0, len(reqs))
	for i := range reqs {
		slot, err := NewRecurringSlot(seasonID, slotInputFromRequest(&reqs[i]))
		if err != nil {
			return nil, fmt.Errorf("第 %d 条: %w", i+1, err)
		}
		slot.CreatedBy = &callerID
		slot.UpdatedBy = &callerID
		slots = append(slots, *slot)
	}

	if err := s.checkSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	for i := range slots {
		if err := s.checkTeam(ctx, slots[i].TeamID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.RecurringSlot.ReplaceAll(ctx, seasonID, slots); err != nil {
		s.logger.Error("替换训练模板失败", zap.String("season_id", seasonID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("训练模板已整体替换", zap.String("season_id", seasonID), zap.Int("count", len(slots)))
	return toSlotResponses(slots), nil
}

// ────────────────────── 辅助函数 ──────────────────────

func (s *recurringSlotService) checkSeason(ctx context.Context, seasonID string) error {
	if _, err := s.repo.Season.GetByID(ctx, seasonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSeasonNotFound
		}
		s.logger.Error("查询赛季失败", zap.String("id", seasonID), zap.Error(err))
		return err
	}
	return nil
}

func (s *recurringSlotService) checkTeam(ctx context.Context, teamID *string) error {
	if teamID == nil {
		return nil
	}
	if _, err := s.repo.Team.GetByID(ctx, *teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		s.logger.Error("查询球队失败", zap.String("id", *teamID), zap.Error(err))
		return err
	}
	return nil
}

func toSlotResponse(slot *model.RecurringSlot) *dto.SlotResponse {
	return &dto.SlotResponse{
		ID:        slot.SlotID,
		SeasonID:  slot.SeasonID,
		TeamID:    deref(slot.TeamID),
		Weekday:   slot.Weekday,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Venue:     deref(slot.Venue),
		Title:     deref(slot.Title),
	}
}

func toSlotResponses(slots []model.RecurringSlot) []dto.SlotResponse {
	result := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toSlotResponse(&slots[i]))
	}
	return result
}
