package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

type attendanceFixture struct {
	svc     AttendanceService
	mocks   *mockRepos
	sender  *fakeSender
	session *model.TrainingSession
	maria   *model.Player
	iva     *model.Player
	petar   *model.Player
}

func setupTestAttendanceService(withSender bool) *attendanceFixture {
	repo, mocks := newMockRepository()
	ctx := context.Background()

	team := &model.Team{Name: TeamU12Girls}
	_ = mocks.team.Create(ctx, team)
	other := &model.Team{Name: TeamU12Boys}
	_ = mocks.team.Create(ctx, other)

	session := &model.TrainingSession{
		TeamID: &team.TeamID, SessionDate: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		StartTime: "18:00", EndTime: "19:30",
	}
	_ = mocks.session.Create(ctx, session)

	f := &attendanceFixture{mocks: mocks, session: session}
	f.maria = &model.Player{FullName: "Мария", TeamID: &team.TeamID, ParentPhone: strPtr("0888123456")}
	f.iva = &model.Player{FullName: "Ива", TeamID: &team.TeamID, ParentPhone: strPtr("0888999999")}
	f.petar = &model.Player{FullName: "Петър", TeamID: &other.TeamID}
	for _, p := range []*model.Player{f.maria, f.iva, f.petar} {
		_ = mocks.player.Create(ctx, p)
	}
	// 只有 Мария 的家长绑定了 Telegram
	_ = mocks.chat.Upsert(ctx, &model.ChatBinding{Phone: "888123456", ChatID: 100})

	var sender Sender
	if withSender {
		f.sender = newFakeSender()
		sender = f.sender
	}
	notifier := NewNotificationService(repo, sender, zap.NewNop())
	sessions := NewTrainingSessionService(repo, fixedClock(2024, time.January, 8), zap.NewNop())
	f.svc = NewAttendanceService(repo, sessions, notifier, metrics.New(), zap.NewNop())
	return f
}

func TestAttendanceService_Get(t *testing.T) {
	f := setupTestAttendanceService(false)
	ctx := context.Background()

	_ = f.mocks.attendance.Upsert(ctx, []model.Attendance{{SessionID: f.session.SessionID, PlayerID: f.maria.PlayerID, Status: model.AttendancePresent}})

	resp, err := f.svc.Get(ctx, f.session.SessionID)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("只应列出本队队员，期望 2，实际 %d", len(resp.Entries))
	}
	for _, e := range resp.Entries {
		switch e.PlayerID {
		case f.maria.PlayerID:
			if e.Status != model.AttendancePresent {
				t.Errorf("Мария 期望 present，实际 %q", e.Status)
			}
		case f.iva.PlayerID:
			if e.Status != "" {
				t.Errorf("未标记队员 status 应为空，实际 %q", e.Status)
			}
		}
	}
	if resp.Session.TeamName != TeamU12Girls {
		t.Errorf("期望球队 %s，实际 %s", TeamU12Girls, resp.Session.TeamName)
	}
}

func TestAttendanceService_Get_SessionNotFound(t *testing.T) {
	f := setupTestAttendanceService(false)

	if _, err := f.svc.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}

func TestAttendanceService_Mark_NotifiesBoundParents(t *testing.T) {
	f := setupTestAttendanceService(true)

	resp, err := f.svc.Mark(context.Background(), f.session.SessionID, &dto.MarkAttendanceRequest{
		Marks: []dto.AttendanceMark{
			{PlayerID: f.maria.PlayerID, Status: model.AttendanceAbsent, Note: "болна"},
			{PlayerID: f.iva.PlayerID, Status: model.AttendancePresent},
		},
		NotifyParent: true,
	})
	if err != nil {
		t.Fatalf("Mark 应成功: %v", err)
	}
	if resp.Updated != 2 {
		t.Errorf("期望更新 2 条，实际 %d", resp.Updated)
	}
	if resp.Notified != 1 {
		t.Errorf("只有 1 位家长绑定，期望通知 1 条，实际 %d", resp.Notified)
	}

	msgs := f.sender.sent[100]
	if len(msgs) != 1 {
		t.Fatalf("期望 1 条消息，实际 %d", len(msgs))
	}
	want := "🏐 Мария е ❌ отсъствал(а) на тренировка на 08.01.2024 (18:00 - 19:30).\n📝 Бележка: болна"
	if msgs[0] != want {
		t.Errorf("消息内容不符:\n期望 %q\n实际 %q", want, msgs[0])
	}
	if len(f.mocks.attendance.records) != 2 {
		t.Errorf("期望 2 条考勤，实际 %d", len(f.mocks.attendance.records))
	}
}

func TestAttendanceService_Mark_NoNotifyFlag(t *testing.T) {
	f := setupTestAttendanceService(true)

	resp, err := f.svc.Mark(context.Background(), f.session.SessionID, &dto.MarkAttendanceRequest{
		Marks: []dto.AttendanceMark{{PlayerID: f.maria.PlayerID, Status: model.AttendancePresent}},
	})
	if err != nil {
		t.Fatalf("Mark 应成功: %v", err)
	}
	if resp.Notified != 0 || len(f.sender.sent) != 0 {
		t.Error("未要求通知时不应发送消息")
	}
}

func TestAttendanceService_Mark_SendFailureKeepsAttendance(t *testing.T) {
	f := setupTestAttendanceService(true)
	f.sender.fail[100] = true

	resp, err := f.svc.Mark(context.Background(), f.session.SessionID, &dto.MarkAttendanceRequest{
		Marks:        []dto.AttendanceMark{{PlayerID: f.maria.PlayerID, Status: model.AttendancePresent}},
		NotifyParent: true,
	})
	if err != nil {
		t.Fatalf("发送失败不应影响考勤保存: %v", err)
	}
	if resp.Updated != 1 || resp.Notified != 0 {
		t.Errorf("结果不符: %+v", resp)
	}
}

func TestAttendanceService_Mark_UnknownPlayer(t *testing.T) {
	f := setupTestAttendanceService(false)

	_, err := f.svc.Mark(context.Background(), f.session.SessionID, &dto.MarkAttendanceRequest{
		Marks: []dto.AttendanceMark{{PlayerID: "ghost", Status: model.AttendancePresent}},
	})
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("期望 ErrPlayerNotFound，实际: %v", err)
	}
}

func TestAttendanceService_Mark_RejectsOtherTeam(t *testing.T) {
	f := setupTestAttendanceService(false)

	_, err := f.svc.Mark(context.Background(), f.session.SessionID, &dto.MarkAttendanceRequest{
		Marks: []dto.AttendanceMark{
			{PlayerID: f.maria.PlayerID, Status: model.AttendancePresent},
			{PlayerID: f.petar.PlayerID, Status: model.AttendancePresent},
		},
	})
	if !errors.Is(err, ErrPlayerNotInTeam) {
		t.Fatalf("期望 ErrPlayerNotInTeam，实际: %v", err)
	}
	if len(f.mocks.attendance.records) != 0 {
		t.Errorf("整批应被拒绝，实际写入 %d 条", len(f.mocks.attendance.records))
	}
}

func TestAttendanceService_Mark_TeamlessSessionAcceptsAnyPlayer(t *testing.T) {
	f := setupTestAttendanceService(false)
	ctx := context.Background()

	open := &model.TrainingSession{SessionDate: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), StartTime: "10:00"}
	_ = f.mocks.session.Create(ctx, open)

	resp, err := f.svc.Mark(ctx, open.SessionID, &dto.MarkAttendanceRequest{
		Marks: []dto.AttendanceMark{
			{PlayerID: f.maria.PlayerID, Status: model.AttendancePresent},
			{PlayerID: f.petar.PlayerID, Status: model.AttendanceAbsent},
		},
	})
	if err != nil {
		t.Fatalf("无球队的训练课应接受任意队员: %v", err)
	}
	if resp.Updated != 2 {
		t.Errorf("期望更新 2 条，实际 %d", resp.Updated)
	}
}

func TestAttendanceMessage_PresentWithoutTimes(t *testing.T) {
	msg := attendanceMessage("Ива", &dto.SessionResponse{Date: "2024-01-08"}, dto.AttendanceMark{Status: model.AttendancePresent})
	if msg != "🏐 Ива е ✅ присъствал(а) на тренировка на 08.01.2024." {
		t.Errorf("消息内容不符: %q", msg)
	}
	if strings.Contains(msg, "Бележка") {
		t.Error("无备注时不应包含备注行")
	}
}

func TestAttendanceService_TeamStats(t *testing.T) {
	f := setupTestAttendanceService(false)
	ctx := context.Background()

	_ = f.mocks.attendance.Upsert(ctx, []model.Attendance{
		{SessionID: "s1", PlayerID: f.maria.PlayerID, Status: model.AttendancePresent},
		{SessionID: "s2", PlayerID: f.maria.PlayerID, Status: model.AttendancePresent},
		{SessionID: "s3", PlayerID: f.maria.PlayerID, Status: model.AttendanceAbsent},
		{SessionID: "s1", PlayerID: f.petar.PlayerID, Status: model.AttendancePresent},
	})

	stats, err := f.svc.TeamStats(ctx, *f.maria.TeamID)
	if err != nil {
		t.Fatalf("TeamStats 应成功: %v", err)
	}
	if stats.TeamName != TeamU12Girls || len(stats.Players) != 2 {
		t.Fatalf("统计结果不符: %+v", stats)
	}
	// 按姓名排序：Ива 在 Мария 之前
	iva, maria := stats.Players[0], stats.Players[1]
	if iva.PlayerID != f.iva.PlayerID || iva.Total != 0 || iva.Percent != 0 {
		t.Errorf("无记录的队员应计为 0: %+v", iva)
	}
	if maria.Total != 3 || maria.Present != 2 || maria.Absent != 1 || maria.Percent != 66.7 {
		t.Errorf("Мария 统计不符: %+v", maria)
	}
}

func TestAttendanceService_PlayerStats(t *testing.T) {
	f := setupTestAttendanceService(false)
	ctx := context.Background()

	_ = f.mocks.attendance.Upsert(ctx, []model.Attendance{
		{SessionID: "s1", PlayerID: f.petar.PlayerID, Status: model.AttendancePresent},
	})

	stats, err := f.svc.PlayerStats(ctx, f.petar.PlayerID)
	if err != nil {
		t.Fatalf("PlayerStats 应成功: %v", err)
	}
	if stats.Total != 1 || stats.Percent != 100 {
		t.Errorf("统计不符: %+v", stats)
	}

	if _, err := f.svc.PlayerStats(ctx, "missing"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("期望 ErrPlayerNotFound，实际: %v", err)
	}
	if _, err := f.svc.TeamStats(ctx, "missing"); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("期望 ErrTeamNotFound，实际: %v", err)
	}
}
