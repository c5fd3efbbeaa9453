package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

func setupTestTeamService() (TeamService, *mockRepos) {
	repo, mocks := newMockRepository()
	return NewTeamService(repo, zap.NewNop()), mocks
}

func TestTeamService_Resolve_CreatesOnMiss(t *testing.T) {
	svc, mocks := setupTestTeamService()
	ctx := context.Background()

	team, err := svc.Resolve(ctx, "u12 girls")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if team.Name != TeamU12Girls {
		t.Errorf("期望名称 %q，实际 %q", TeamU12Girls, team.Name)
	}
	if team.AgeGroup != "" || team.Gender != "" {
		t.Error("自动创建的球队不应带年龄组或性别")
	}

	// 第二次解析同一标签返回同一球队
	again, err := svc.Resolve(ctx, "У-12 момичета")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if again.ID != team.ID {
		t.Errorf("期望同一球队 %s，实际 %s", team.ID, again.ID)
	}
	if len(mocks.team.teams) != 1 {
		t.Errorf("期望仅 1 支球队，实际 %d", len(mocks.team.teams))
	}
}

func TestTeamService_Resolve_Empty(t *testing.T) {
	svc, _ := setupTestTeamService()

	_, err := svc.Resolve(context.Background(), "   ")
	if !errors.Is(err, ErrTeamNameEmpty) {
		t.Errorf("期望 ErrTeamNameEmpty，实际: %v", err)
	}
}

func TestTeamService_EnsureScheduleTeams(t *testing.T) {
	svc, mocks := setupTestTeamService()
	ctx := context.Background()

	// 旧数据：非标准写法，以及已存在的标准名称
	_ = mocks.team.Create(ctx, &model.Team{Name: "U12 girls"})
	_ = mocks.team.Create(ctx, &model.Team{Name: "Senior"})
	_ = mocks.team.Create(ctx, &model.Team{Name: TeamU18Boys})
	_ = mocks.team.Create(ctx, &model.Team{Name: "U18 мъже"})
	legacy := mocks.team.byName("U12 girls").TeamID

	if err := svc.EnsureScheduleTeams(ctx); err != nil {
		t.Fatalf("EnsureScheduleTeams 应成功: %v", err)
	}

	for _, name := range ScheduleTeamNames {
		if mocks.team.byName(name) == nil {
			t.Errorf("缺少标准球队 %q", name)
		}
	}
	if got := mocks.team.byName(TeamU12Girls); got == nil || got.TeamID != legacy {
		t.Error("旧名称球队应被改名而不是新建")
	}
	// 标准名称已存在时，旧名称保持不变
	if mocks.team.byName("U18 мъже") == nil {
		t.Error("目标名称已存在时不应改名")
	}
	if n := len(mocks.team.teams); n != 6 {
		t.Errorf("期望 6 支球队，实际 %d", n)
	}

	// 幂等
	if err := svc.EnsureScheduleTeams(ctx); err != nil {
		t.Fatalf("EnsureScheduleTeams 应成功: %v", err)
	}
	if n := len(mocks.team.teams); n != 6 {
		t.Errorf("重复执行后期望 6 支球队，实际 %d", n)
	}
}

func TestTeamService_Create(t *testing.T) {
	svc, _ := setupTestTeamService()

	team, err := svc.Create(context.Background(), &dto.CreateTeamRequest{Name: " U-12 М ", AgeGroup: strPtr("U12")}, "coach-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if team.Name != "U-12 М" || team.AgeGroup != "U12" {
		t.Errorf("创建结果不符: %+v", team)
	}
	if team.Color != teamColors[TeamU12Boys] {
		t.Errorf("期望颜色 %s，实际 %s", teamColors[TeamU12Boys], team.Color)
	}
}
