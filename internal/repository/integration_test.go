//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	"github.com/anatoli9010/volleyball-club-management/pkg/database"
	pkgerrors "github.com/anatoli9010/volleyball-club-management/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=club password=club_password dbname=volleyball_club_test sslmode=disable TimeZone=Europe/Sofia"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func createTeam(t *testing.T, name string) (*model.Team, func()) {
	t.Helper()
	team := &model.Team{Name: fmt.Sprintf("%s-%d", name, time.Now().UnixNano())}
	if err := testDB.Create(team).Error; err != nil {
		t.Fatalf("创建球队失败: %v", err)
	}
	return team, func() {
		testDB.Where("team_id = ?", team.TeamID).Delete(&model.TrainingSession{})
		testDB.Unscoped().Where("team_id = ?", team.TeamID).Delete(&model.Team{})
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Idempotence key
// ═══════════════════════════════════════════════════════════

func TestUniqueKey_ConcurrentBatchInsert(t *testing.T) {
	team, cleanup := createTeam(t, "U-12 М")
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	build := func() []model.TrainingSession {
		var out []model.TrainingSession
		for d := 1; d <= 28; d += 7 {
			out = append(out, model.TrainingSession{
				TeamID:      &team.TeamID,
				SessionDate: time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
				StartTime:   "18:00",
				EndTime:     "19:30",
			})
		}
		return out
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int64
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.TrainingSession.BatchCreateIgnoreConflicts(ctx, build())
			if err != nil {
				t.Errorf("并发插入失败: %v", err)
				return
			}
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != 4 {
		t.Errorf("期望并发插入合计 4 行，实际 %d", total)
	}

	keys, err := repo.TrainingSession.ListKeysInRange(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListKeysInRange 失败: %v", err)
	}
	count := 0
	for _, k := range keys {
		if k.TeamID != nil && *k.TeamID == team.TeamID {
			count++
		}
	}
	if count != 4 {
		t.Errorf("期望 4 个幂等键，实际 %d", count)
	}
}

// 时区为 Europe/Sofia 的连接上，DATE 列与 UTC 零点参数比较不应错位
func TestSessionDate_RangeBoundsInClubTimezone(t *testing.T) {
	team, cleanup := createTeam(t, "U-18 Ж")
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	last := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if _, err := repo.TrainingSession.BatchCreateIgnoreConflicts(ctx, []model.TrainingSession{
		{TeamID: &team.TeamID, SessionDate: last, StartTime: "18:00"},
	}); err != nil {
		t.Fatalf("插入失败: %v", err)
	}

	got, err := repo.TrainingSession.List(ctx, repository.SessionFilter{Start: last, End: last, TeamID: team.TeamID})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 条，实际 %d", len(got))
	}
	if got[0].SessionDate.Format("2006-01-02") != "2024-01-31" {
		t.Errorf("日期错位: %s", got[0].SessionDate)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	season := &model.Season{Name: fmt.Sprintf("rollback-%d", time.Now().UnixNano())}
	if err := txRepo.Season.Create(ctx, season); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建赛季失败: %v", err)
	}
	tx.Rollback()

	if _, err := repo.Season.GetByID(ctx, season.SeasonID); err == nil {
		testDB.Unscoped().Where("season_id = ?", season.SeasonID).Delete(&model.Season{})
		t.Fatal("期望回滚后查不到赛季，但实际查到了")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_TrainingSession(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := &model.TrainingSession{SessionDate: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), StartTime: "07:00"}
	if err := repo.TrainingSession.Create(ctx, s); err != nil {
		t.Fatalf("创建训练课失败: %v", err)
	}
	defer testDB.Where("session_id = ?", s.SessionID).Delete(&model.TrainingSession{})

	if s.Version != 1 {
		t.Errorf("初始 version 应为 1，得到: %d", s.Version)
	}

	copy1, _ := repo.TrainingSession.GetByID(ctx, s.SessionID)
	copy2, _ := repo.TrainingSession.GetByID(ctx, s.SessionID)

	copy1.Notes = "НУПИ"
	if err := repo.TrainingSession.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	copy2.Notes = "СТАДИОН"
	if err := repo.TrainingSession.Update(ctx, copy2); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}
