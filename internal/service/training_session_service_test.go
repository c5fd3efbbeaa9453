package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	pkgerrors "github.com/anatoli9010/volleyball-club-management/pkg/errors"
)

func setupTestSessionService() (TrainingSessionService, *mockRepos, *model.Team) {
	repo, mocks := newMockRepository()
	team := &model.Team{Name: TeamSenior}
	_ = mocks.team.Create(context.Background(), team)
	return NewTrainingSessionService(repo, fixedClock(2024, time.January, 17), zap.NewNop()), mocks, team
}

// ── Create 测试 ──

func TestTrainingSessionService_Create(t *testing.T) {
	svc, _, team := setupTestSessionService()

	resp, err := svc.Create(context.Background(), &dto.CreateSessionRequest{
		TeamID: &team.TeamID, Date: "2024-01-20", StartTime: "10:00", EndTime: "11:30", Notes: " турнир ",
	}, "coach-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.TeamName != TeamSenior {
		t.Errorf("期望球队名 %s，实际 %s", TeamSenior, resp.TeamName)
	}
	if resp.Notes != "турнир" || resp.Version != 1 {
		t.Errorf("创建结果不符: %+v", resp)
	}
}

func TestTrainingSessionService_Create_Duplicate(t *testing.T) {
	svc, _, team := setupTestSessionService()
	ctx := context.Background()

	req := &dto.CreateSessionRequest{TeamID: &team.TeamID, Date: "2024-01-20", StartTime: "10:00", EndTime: "11:30"}
	if _, err := svc.Create(ctx, req, "coach-001"); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	_, err := svc.Create(ctx, req, "coach-001")
	if !errors.Is(err, ErrSessionDuplicate) {
		t.Errorf("期望 ErrSessionDuplicate，实际: %v", err)
	}
}

func TestTrainingSessionService_Create_Invalid(t *testing.T) {
	svc, _, team := setupTestSessionService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateSessionRequest{TeamID: &team.TeamID, Date: "2024-01-20", StartTime: "12:00", EndTime: "11:00"}, "c")
	if !errors.Is(err, ErrSessionTimeInvalid) {
		t.Errorf("期望 ErrSessionTimeInvalid，实际: %v", err)
	}

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = svc.Create(ctx, &dto.CreateSessionRequest{TeamID: &missing, Date: "2024-01-20"}, "c")
	if !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("期望 ErrTeamNotFound，实际: %v", err)
	}

	_, err = svc.Create(ctx, &dto.CreateSessionRequest{Date: "20.01.2024"}, "c")
	if !errors.Is(err, ErrSessionRangeInvalid) {
		t.Errorf("期望 ErrSessionRangeInvalid，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestTrainingSessionService_Update_OptimisticLock(t *testing.T) {
	svc, _, team := setupTestSessionService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateSessionRequest{TeamID: &team.TeamID, Date: "2024-01-20", StartTime: "10:00", EndTime: "11:00"}, "c")

	notes := "зала НУПИ"
	updated, err := svc.Update(ctx, created.ID, &dto.UpdateSessionRequest{Notes: &notes, Version: created.Version}, "c")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.Version != created.Version+1 {
		t.Errorf("期望 version=%d，实际 %d", created.Version+1, updated.Version)
	}
	if updated.Notes != notes {
		t.Errorf("期望备注 %q，实际 %q", notes, updated.Notes)
	}

	// 使用过期版本号
	_, err = svc.Update(ctx, created.ID, &dto.UpdateSessionRequest{Notes: &notes, Version: created.Version}, "c")
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestTrainingSessionService_Update_MoveOntoExisting(t *testing.T) {
	svc, _, team := setupTestSessionService()
	ctx := context.Background()

	_, _ = svc.Create(ctx, &dto.CreateSessionRequest{TeamID: &team.TeamID, Date: "2024-01-20", StartTime: "10:00", EndTime: "11:00"}, "c")
	other, _ := svc.Create(ctx, &dto.CreateSessionRequest{TeamID: &team.TeamID, Date: "2024-01-21", StartTime: "10:00", EndTime: "11:00"}, "c")

	date := "2024-01-20"
	_, err := svc.Update(ctx, other.ID, &dto.UpdateSessionRequest{Date: &date, Version: other.Version}, "c")
	if !errors.Is(err, ErrSessionDuplicate) {
		t.Errorf("期望 ErrSessionDuplicate，实际: %v", err)
	}
}

// ── List / Delete 测试 ──

func TestTrainingSessionService_List(t *testing.T) {
	svc, _, team := setupTestSessionService()
	ctx := context.Background()

	for _, d := range []string{"2023-12-31", "2024-01-05", "2024-01-31", "2024-02-01"} {
		if _, err := svc.Create(ctx, &dto.CreateSessionRequest{TeamID: &team.TeamID, Date: d, StartTime: "10:00", EndTime: "11:00"}, "c"); err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
	}

	// 默认当月
	list, err := svc.List(ctx, &dto.ListSessionsRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("当月期望 2 条，实际 %d", len(list))
	}

	list, _ = svc.List(ctx, &dto.ListSessionsRequest{Year: 2024, Month: 2})
	if len(list) != 1 || list[0].Date != "2024-02-01" {
		t.Errorf("2024-02 期望 1 条，实际 %+v", list)
	}

	list, _ = svc.List(ctx, &dto.ListSessionsRequest{Start: "2023-12-31", End: "2024-01-05"})
	if len(list) != 2 {
		t.Errorf("区间期望 2 条，实际 %d", len(list))
	}

	if _, err := svc.List(ctx, &dto.ListSessionsRequest{Start: "2024-01-05"}); !errors.Is(err, ErrSessionRangeInvalid) {
		t.Errorf("只有 start 期望 ErrSessionRangeInvalid，实际: %v", err)
	}
	if _, err := svc.List(ctx, &dto.ListSessionsRequest{Start: "2024-01-05", End: "2024-01-01"}); !errors.Is(err, ErrSessionRangeInvalid) {
		t.Errorf("反向区间期望 ErrSessionRangeInvalid，实际: %v", err)
	}
}

func TestTrainingSessionService_Delete(t *testing.T) {
	svc, mocks, team := setupTestSessionService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateSessionRequest{TeamID: &team.TeamID, Date: "2024-01-20"}, "c")
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if mocks.session.count() != 0 {
		t.Error("删除后不应有训练课")
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}
