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
	pkgerrors "github.com/anatoli9010/volleyball-club-management/pkg/errors"
)

// ── 训练课模块业务错误 ──

var (
	ErrSessionNotFound     = errors.New("训练课不存在")
	ErrSessionDuplicate    = errors.New("该球队在同一日期和开始时间已有训练课")
	ErrSessionTimeInvalid  = errors.New("训练课结束时间必须晚于开始时间")
	ErrSessionRangeInvalid = errors.New("查询日期范围无效")
)

// TrainingSessionService 训练课业务接口
type TrainingSessionService interface {
	List(ctx context.Context, req *dto.ListSessionsRequest) ([]dto.SessionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SessionResponse, error)
	Create(ctx context.Context, req *dto.CreateSessionRequest, callerID string) (*dto.SessionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSessionRequest, callerID string) (*dto.SessionResponse, error)
	Delete(ctx context.Context, id string) error
}

type trainingSessionService struct {
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger
}

// NewTrainingSessionService 创建 TrainingSessionService 实例
func NewTrainingSessionService(repo *repository.Repository, clock Clock, logger *zap.Logger) TrainingSessionService {
	return &trainingSessionService{repo: repo, clock: clock, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *trainingSessionService) List(ctx context.Context, req *dto.ListSessionsRequest) ([]dto.SessionResponse, error) {
	start, end, err := s.listRange(req)
	if err != nil {
		return nil, err
	}

	sessions, err := s.repo.TrainingSession.List(ctx, repository.SessionFilter{Start: start, End: end, TeamID: req.TeamID})
	if err != nil {
		s.logger.Error("查询训练课失败", zap.Error(err))
		return nil, err
	}

	names, err := teamNames(ctx, s.repo)
	if err != nil {
		s.logger.Error("查询球队列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toSessionResponse(&sessions[i], names))
	}
	return result, nil
}

// listRange start/end 优先，其次 year/month，默认当月
func (s *trainingSessionService) listRange(req *dto.ListSessionsRequest) (time.Time, time.Time, error) {
	if req.Start != "" || req.End != "" {
		if req.Start == "" || req.End == "" {
			return time.Time{}, time.Time{}, ErrSessionRangeInvalid
		}
		start, err := parseDate(req.Start)
		if err != nil {
			return time.Time{}, time.Time{}, ErrSessionRangeInvalid
		}
		end, err := parseDate(req.End)
		if err != nil || end.Before(start) {
			return time.Time{}, time.Time{}, ErrSessionRangeInvalid
		}
		return start, end, nil
	}

	today := s.clock.Today()
	year, month := today.Year(), int(today.Month())
	if req.Year != 0 {
		year = req.Year
	}
	if req.Month != 0 {
		month = req.Month
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrSessionRangeInvalid
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *trainingSessionService) GetByID(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withTeamName(ctx, session), nil
}

// ────────────────────── Create ──────────────────────

// Create 手动创建训练课；与物化共用 (team_id, date, start_time) 唯一约束
func (s *trainingSessionService) Create(ctx context.Context, req *dto.CreateSessionRequest, callerID string) (*dto.SessionResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrSessionRangeInvalid
	}

	session := &model.TrainingSession{
		TeamID:      trimmedOrNil(req.TeamID),
		SessionDate: date,
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		Notes:       strings.TrimSpace(req.Notes),
	}
	session.Version = 1
	session.CreatedBy = &callerID
	session.UpdatedBy = &callerID

	if err := validateSessionTimes(session); err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, session.TeamID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, session, ""); err != nil {
		return nil, err
	}

	if err := s.repo.TrainingSession.Create(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSessionDuplicate
		}
		s.logger.Error("创建训练课失败", zap.Error(err))
		return nil, err
	}
	return s.withTeamName(ctx, session), nil
}

// ────────────────────── Update ──────────────────────

func (s *trainingSessionService) Update(ctx context.Context, id string, req *dto.UpdateSessionRequest, callerID string) (*dto.SessionResponse, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.TeamID != nil {
		session.TeamID = trimmedOrNil(req.TeamID)
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, ErrSessionRangeInvalid
		}
		session.SessionDate = date
	}
	if req.StartTime != nil {
		session.StartTime = strings.TrimSpace(*req.StartTime)
	}
	if req.EndTime != nil {
		session.EndTime = strings.TrimSpace(*req.EndTime)
	}
	if req.Notes != nil {
		session.Notes = strings.TrimSpace(*req.Notes)
	}
	session.UpdatedBy = &callerID

	if err := validateSessionTimes(session); err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, session.TeamID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, session, session.SessionID); err != nil {
		return nil, err
	}

	if err := s.repo.TrainingSession.Update(ctx, session); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrSessionDuplicate
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, err
		}
		s.logger.Error("更新训练课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.withTeamName(ctx, session), nil
}

// ────────────────────── Delete ──────────────────────

func (s *trainingSessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.getSession(ctx, id); err != nil {
		return err
	}
	if err := s.repo.TrainingSession.Delete(ctx, id); err != nil {
		s.logger.Error("删除训练课失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 辅助函数 ──────────────────────

func (s *trainingSessionService) getSession(ctx context.Context, id string) (*model.TrainingSession, error) {
	session, err := s.repo.TrainingSession.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询训练课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (s *trainingSessionService) checkTeam(ctx context.Context, teamID *string) error {
	if teamID == nil {
		return nil
	}
	if _, err := s.repo.Team.GetByID(ctx, *teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

// checkDuplicate 提前给出友好错误；并发写入仍由唯一索引兜底
func (s *trainingSessionService) checkDuplicate(ctx context.Context, session *model.TrainingSession, selfID string) error {
	if session.TeamID == nil {
		return nil
	}
	other, err := s.repo.TrainingSession.GetByKey(ctx, *session.TeamID, session.SessionDate, session.StartTime)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if other.SessionID != selfID {
		return ErrSessionDuplicate
	}
	return nil
}

func (s *trainingSessionService) withTeamName(ctx context.Context, session *model.TrainingSession) *dto.SessionResponse {
	names := map[string]string{}
	if session.TeamID != nil {
		if team, err := s.repo.Team.GetByID(ctx, *session.TeamID); err == nil {
			names[team.TeamID] = team.Name
		}
	}
	return toSessionResponse(session, names)
}

func validateSessionTimes(session *model.TrainingSession) error {
	if session.StartTime != "" && !dto.IsHHMM(session.StartTime) {
		return ErrSessionTimeInvalid
	}
	if session.EndTime != "" && !dto.IsHHMM(session.EndTime) {
		return ErrSessionTimeInvalid
	}
	if session.StartTime != "" && session.EndTime != "" && session.StartTime >= session.EndTime {
		return ErrSessionTimeInvalid
	}
	return nil
}

// teamNames team_id → 名称（含已软删除球队之外的全部球队）
func teamNames(ctx context.Context, repo *repository.Repository) (map[string]string, error) {
	teams, err := repo.Team.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.TeamID] = t.Name
	}
	return names, nil
}

func toSessionResponse(s *model.TrainingSession, names map[string]string) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:        s.SessionID,
		Date:      formatDate(s.SessionDate),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Notes:     s.Notes,
		Version:   s.Version,
	}
	if s.TeamID != nil {
		resp.TeamID = *s.TeamID
		resp.TeamName = names[*s.TeamID]
	}
	return resp
}
