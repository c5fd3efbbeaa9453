package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

// AttendanceService 训练课考勤
type AttendanceService interface {
	Get(ctx context.Context, sessionID string) (*dto.AttendanceResponse, error)
	// Mark 批量写入考勤；notify_parent 时给已绑定的家长发送消息
	Mark(ctx context.Context, sessionID string, req *dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error)
	// PlayerStats 队员全部已标记考勤的出勤率
	PlayerStats(ctx context.Context, playerID string) (*dto.PlayerAttendanceStats, error)
	// TeamStats 球队每位队员的出勤率，没有考勤记录的队员计为 0
	TeamStats(ctx context.Context, teamID string) (*dto.TeamAttendanceStats, error)
}

type attendanceService struct {
	repo     *repository.Repository
	sessions TrainingSessionService
	notifier NotificationService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	repo *repository.Repository,
	sessions TrainingSessionService,
	notifier NotificationService,
	m *metrics.Metrics,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{repo: repo, sessions: sessions, notifier: notifier, metrics: m, logger: logger}
}

// ────────────────────── Get ──────────────────────

// Get 返回该训练课球队的全部队员，未标记的 status 为空
func (s *attendanceService) Get(ctx context.Context, sessionID string) (*dto.AttendanceResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	players, err := s.repo.Player.List(ctx, session.TeamID)
	if err != nil {
		s.logger.Error("查询队员失败", zap.Error(err))
		return nil, err
	}
	records, err := s.repo.Attendance.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询考勤失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	byPlayer := make(map[string]model.Attendance, len(records))
	for _, r := range records {
		byPlayer[r.PlayerID] = r
	}

	entries := make([]dto.AttendanceEntry, 0, len(players))
	for _, p := range players {
		entry := dto.AttendanceEntry{PlayerID: p.PlayerID, FullName: p.FullName}
		if r, ok := byPlayer[p.PlayerID]; ok {
			entry.Status = r.Status
			if r.NotedAt != nil {
				entry.NotedAt = r.NotedAt.Format(time.RFC3339)
			}
		}
		entries = append(entries, entry)
	}
	return &dto.AttendanceResponse{Session: *session, Entries: entries}, nil
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, sessionID string, req *dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// 同一队员重复出现时以最后一条为准
	marks := make(map[string]dto.AttendanceMark, len(req.Marks))
	ids := make([]string, 0, len(req.Marks))
	for _, m := range req.Marks {
		if _, ok := marks[m.PlayerID]; !ok {
			ids = append(ids, m.PlayerID)
		}
		marks[m.PlayerID] = m
	}

	players, err := s.repo.Player.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(players) != len(ids) {
		return nil, ErrPlayerNotFound
	}
	// 有球队的训练课只接受本队队员
	if session.TeamID != "" {
		for _, p := range players {
			if p.TeamID == nil || *p.TeamID != session.TeamID {
				return nil, fmt.Errorf("%w: %s", ErrPlayerNotInTeam, p.PlayerID)
			}
		}
	}

	now := time.Now()
	records := make([]model.Attendance, 0, len(ids))
	for _, id := range ids {
		noted := now
		records = append(records, model.Attendance{
			SessionID: sessionID,
			PlayerID:  id,
			Status:    marks[id].Status,
			NotedAt:   &noted,
		})
	}
	if err := s.repo.Attendance.Upsert(ctx, records); err != nil {
		s.logger.Error("保存考勤失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	resp := &dto.MarkAttendanceResponse{Updated: len(records)}
	if !req.NotifyParent || s.notifier == nil || !s.notifier.Enabled() {
		return resp, nil
	}

	notified, err := s.notifyParents(ctx, session, players, marks)
	if err != nil {
		// 考勤已保存，通知失败只记录
		s.logger.Warn("发送考勤通知失败", zap.String("session_id", sessionID), zap.Error(err))
	}
	resp.Notified = notified
	return resp, nil
}

// ────────────────────── 统计 ──────────────────────

func (s *attendanceService) PlayerStats(ctx context.Context, playerID string) (*dto.PlayerAttendanceStats, error) {
	player, err := s.repo.Player.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		s.logger.Error("查询队员失败", zap.String("id", playerID), zap.Error(err))
		return nil, err
	}

	stats, err := s.countFor(ctx, []model.Player{*player})
	if err != nil {
		return nil, err
	}
	return &stats[0], nil
}

func (s *attendanceService) TeamStats(ctx context.Context, teamID string) (*dto.TeamAttendanceStats, error) {
	team, err := s.repo.Team.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询球队失败", zap.String("id", teamID), zap.Error(err))
		return nil, err
	}

	players, err := s.repo.Player.List(ctx, teamID)
	if err != nil {
		s.logger.Error("查询队员失败", zap.Error(err))
		return nil, err
	}
	stats, err := s.countFor(ctx, players)
	if err != nil {
		return nil, err
	}
	return &dto.TeamAttendanceStats{TeamID: team.TeamID, TeamName: team.Name, Players: stats}, nil
}

// countFor 按 players 的顺序返回统计
func (s *attendanceService) countFor(ctx context.Context, players []model.Player) ([]dto.PlayerAttendanceStats, error) {
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.PlayerID)
	}
	counts, err := s.repo.Attendance.CountByPlayers(ctx, ids)
	if err != nil {
		s.logger.Error("统计考勤失败", zap.Error(err))
		return nil, err
	}
	byPlayer := make(map[string]repository.AttendanceCount, len(counts))
	for _, c := range counts {
		byPlayer[c.PlayerID] = c
	}

	result := make([]dto.PlayerAttendanceStats, 0, len(players))
	for _, p := range players {
		c := byPlayer[p.PlayerID]
		result = append(result, dto.PlayerAttendanceStats{
			PlayerID: p.PlayerID,
			FullName: p.FullName,
			Total:    c.Total,
			Present:  c.Present,
			Absent:   c.Total - c.Present,
			Percent:  attendancePercent(c.Present, c.Total),
		})
	}
	return result, nil
}

// attendancePercent 保留一位小数；total 为 0 时返回 0
func attendancePercent(present, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)*1000/float64(total)) / 10
}

// notifyParents 给本次标记的队员家长发送考勤消息，返回成功条数
func (s *attendanceService) notifyParents(ctx context.Context, session *dto.SessionResponse, players []model.Player, marks map[string]dto.AttendanceMark) (int, error) {
	msgs := make([]parentMessage, 0, len(players))
	for _, p := range players {
		msgs = append(msgs, parentMessage{player: p, text: attendanceMessage(p.FullName, session, marks[p.PlayerID])})
	}
	return sendToParents(ctx, s.notifier, s.metrics, s.logger, msgs)
}

// attendanceMessage 家长收到的考勤消息
func attendanceMessage(name string, session *dto.SessionResponse, mark dto.AttendanceMark) string {
	status := "❌ отсъствал(а)"
	if mark.Status == model.AttendancePresent {
		status = "✅ присъствал(а)"
	}

	date := session.Date
	if t, err := parseDate(session.Date); err == nil {
		date = t.Format("02.01.2006")
	}

	var timeRange string
	if session.StartTime != "" || session.EndTime != "" {
		timeRange = fmt.Sprintf(" (%s - %s)", session.StartTime, session.EndTime)
	}

	msg := fmt.Sprintf("🏐 %s е %s на тренировка на %s%s.", name, status, date, timeRange)
	if note := strings.TrimSpace(mark.Note); note != "" {
		msg += "\n📝 Бележка: " + note
	}
	return msg
}
