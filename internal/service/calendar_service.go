package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

const (
	calendarDefaultDays  = 14
	calendarDefaultStart = "08:00"
	calendarDefaultEnd   = "09:00"
	calendarNoTeamTitle  = "—"
	calendarProductID    = "-//volleyball-club//calendar//BG"
)

// CalendarService 日历读模型：查询前先尽力物化所请求的范围
type CalendarService interface {
	Events(ctx context.Context, q *dto.CalendarQuery) ([]dto.CalendarEvent, error)
	// ICS 同一范围的 iCalendar 订阅内容
	ICS(ctx context.Context, q *dto.CalendarQuery) (string, error)
}

type calendarService struct {
	repo        *repository.Repository
	materialize MaterializeService
	clock       Clock
	logger      *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, materialize MaterializeService, clock Clock, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, materialize: materialize, clock: clock, logger: logger}
}

// ────────────────────── Events ──────────────────────

func (s *calendarService) Events(ctx context.Context, q *dto.CalendarQuery) ([]dto.CalendarEvent, error) {
	sessions, names, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}

	events := make([]dto.CalendarEvent, 0, len(sessions))
	for i := range sessions {
		events = append(events, toCalendarEvent(&sessions[i], names))
	}
	return events, nil
}

// ────────────────────── ICS ──────────────────────

func (s *calendarService) ICS(ctx context.Context, q *dto.CalendarQuery) (string, error) {
	sessions, names, err := s.load(ctx, q)
	if err != nil {
		return "", err
	}

	loc := s.clock.Location()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Тренировки")
	cal.SetXWRTimezone(loc.String())

	stamp := time.Now().UTC()
	for i := range sessions {
		session := &sessions[i]
		ev := toCalendarEvent(session, names)

		start, err := sessionClock(session.SessionDate, session.StartTime, calendarDefaultStart, loc)
		if err != nil {
			s.logger.Warn("训练课开始时间无法解析，跳过", zap.String("id", session.SessionID), zap.Error(err))
			continue
		}
		end, err := sessionClock(session.SessionDate, session.EndTime, calendarDefaultEnd, loc)
		if err != nil || !end.After(start) {
			end = start.Add(time.Hour)
		}

		event := cal.AddEvent(session.SessionID + "@volleyball-club")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(ev.Title)
		if ev.Venue != "" {
			event.SetLocation(ev.Venue)
		}
		if ev.Notes != "" {
			event.SetDescription(ev.Notes)
		}
	}
	return cal.Serialize(), nil
}

// ────────────────────── 辅助函数 ──────────────────────

// load 解析范围、尽力物化，再查询训练课与球队名称
func (s *calendarService) load(ctx context.Context, q *dto.CalendarQuery) ([]model.TrainingSession, map[string]string, error) {
	start, end := s.calendarRange(q)

	// 物化失败不影响读取已有训练课
	if _, err := s.materialize.Materialize(ctx, metrics.TriggerCalendar, start, end); err != nil {
		s.logger.Warn("日历查询前物化失败，返回已有数据",
			zap.String("start", formatDate(start)),
			zap.String("end", formatDate(end)),
			zap.Error(err),
		)
	}

	sessions, err := s.repo.TrainingSession.List(ctx, repository.SessionFilter{Start: start, End: end, TeamID: q.TeamID})
	if err != nil {
		s.logger.Error("查询日历训练课失败", zap.Error(err))
		return nil, nil, err
	}
	names, err := teamNames(ctx, s.repo)
	if err != nil {
		s.logger.Error("查询球队列表失败", zap.Error(err))
		return nil, nil, err
	}
	return sessions, names, nil
}

// calendarRange 只取前 10 个字符作为日期；非法或缺省时 start=今天、end=start+14
// 跨度超过 MaxMaterializeDays 时截断到 start+MaxMaterializeDays
func (s *calendarService) calendarRange(q *dto.CalendarQuery) (time.Time, time.Time) {
	start, ok := leadingDate(q.Start)
	if !ok {
		start = s.clock.Today()
	}
	end, ok := leadingDate(q.End)
	if !ok {
		end = start.AddDate(0, 0, calendarDefaultDays)
	}
	if exceedsMaterializeCap(start, end) {
		s.logger.Debug("日历查询范围过大，已截断",
			zap.String("start", formatDate(start)),
			zap.String("end", formatDate(end)),
		)
		end = start.AddDate(0, 0, MaxMaterializeDays)
	}
	return start, end
}

func leadingDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return time.Time{}, false
	}
	t, err := parseDate(raw[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func toCalendarEvent(s *model.TrainingSession, names map[string]string) dto.CalendarEvent {
	title := calendarNoTeamTitle
	var teamID string
	if s.TeamID != nil {
		teamID = *s.TeamID
		if name := names[teamID]; name != "" {
			title = name
		}
	}

	date := formatDate(s.SessionDate)
	return dto.CalendarEvent{
		ID:        "tr-" + s.SessionID,
		Title:     title,
		Start:     fmt.Sprintf("%sT%s:00", date, orDefault(s.StartTime, calendarDefaultStart)),
		End:       fmt.Sprintf("%sT%s:00", date, orDefault(s.EndTime, calendarDefaultEnd)),
		Venue:     guessVenue(s.Notes),
		Notes:     s.Notes,
		TeamID:    teamID,
		TeamColor: TeamColor(names[teamID]),
		Version:   s.Version,
	}
}

// sessionClock 训练课日期 + HH:MM，按俱乐部时区
func sessionClock(date time.Time, hhmm, fallback string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", formatDate(date)+" "+orDefault(hhmm, fallback), loc)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
