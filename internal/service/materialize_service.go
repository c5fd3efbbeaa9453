package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

// ── 物化模块业务错误 ──

var (
	ErrMaterializeRangeInvalid = errors.New("物化日期范围无效")
	ErrMaterializeBusy         = errors.New("物化任务正在执行，请稍后重试")
)

const (
	materializeLockKey = "materialize:lock"
	// MaxMaterializeDays 任何触发方式单次最多覆盖的天数
	MaxMaterializeDays = 366
)

// MaterializeLockTTL 物化锁的过期时间，不得短于任何调用方给单次物化设置的超时
const MaterializeLockTTL = 5 * time.Minute

// MaterializeLocker 跨实例互斥；实现为 Redis 锁
type MaterializeLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// MaterializeService 物化引擎：把激活赛季的周期模板展开为具体日期的训练课
type MaterializeService interface {
	// Materialize 在闭区间 [start, end] 内生成训练课，返回实际插入条数
	// start 晚于 end 时直接返回 0；无激活赛季时返回 0；跨度超过 MaxMaterializeDays 返回 ErrMaterializeRangeInvalid
	Materialize(ctx context.Context, trigger string, start, end time.Time) (int, error)
	// MaterializeRange 手动触发，未指定时 start=今天、end=start+默认天数
	MaterializeRange(ctx context.Context, req *dto.MaterializeRequest) (*dto.MaterializeResponse, error)
	MaterializeMonth(ctx context.Context, year, month int) (*dto.MaterializeResponse, error)
	// MaterializeUpcoming 今天起向后 days 天
	MaterializeUpcoming(ctx context.Context, trigger string, days int) (*dto.MaterializeResponse, error)
}

// MaterializeOptions 物化引擎依赖
type MaterializeOptions struct {
	Clock             Clock
	ManualDefaultDays int
	Locker            MaterializeLocker // 可为 nil
	Metrics           *metrics.Metrics  // 可为 nil
}

type materializeService struct {
	repo              *repository.Repository
	logger            *zap.Logger
	clock             Clock
	manualDefaultDays int
	locker            MaterializeLocker
	metrics           *metrics.Metrics
}

// NewMaterializeService 创建 MaterializeService 实例
func NewMaterializeService(repo *repository.Repository, opts MaterializeOptions, logger *zap.Logger) MaterializeService {
	days := opts.ManualDefaultDays
	if days <= 0 {
		days = 14
	}
	return &materializeService{
		repo:              repo,
		logger:            logger,
		clock:             opts.Clock,
		manualDefaultDays: days,
		locker:            opts.Locker,
		metrics:           opts.Metrics,
	}
}

// ────────────────────── Materialize ──────────────────────

func (s *materializeService) Materialize(ctx context.Context, trigger string, start, end time.Time) (int, error) {
	start, end = model.DateOnly(start), model.DateOnly(end)
	if start.After(end) {
		return 0, nil
	}
	if exceedsMaterializeCap(start, end) {
		s.logger.Warn("物化范围超过上限，已拒绝",
			zap.String("trigger", trigger),
			zap.String("start", formatDate(start)),
			zap.String("end", formatDate(end)),
		)
		return 0, fmt.Errorf("%w: 单次最多 %d 天", ErrMaterializeRangeInvalid, MaxMaterializeDays)
	}

	began := time.Now()
	created, err := s.materialize(ctx, start, end)
	s.metrics.ObserveMaterialize(trigger, created, time.Since(began), err)

	if err != nil {
		if !errors.Is(err, ErrMaterializeBusy) {
			s.logger.Error("物化训练课失败",
				zap.String("trigger", trigger),
				zap.String("start", formatDate(start)),
				zap.String("end", formatDate(end)),
				zap.Error(err),
			)
		}
		return 0, err
	}

	s.logger.Info("物化训练课完成",
		zap.String("trigger", trigger),
		zap.String("start", formatDate(start)),
		zap.String("end", formatDate(end)),
		zap.Int("created", created),
		zap.Duration("elapsed", time.Since(began)),
	)
	return created, nil
}

// resolvedSlot 已确定球队的模板
type resolvedSlot struct {
	teamID string
	slot   model.RecurringSlot
}

func (s *materializeService) materialize(ctx context.Context, start, end time.Time) (int, error) {
	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, materializeLockKey, MaterializeLockTTL)
		switch {
		case err != nil:
			// 锁只是优化，唯一索引保证正确性
			s.logger.Warn("获取物化锁失败，继续无锁执行", zap.Error(err))
		case !ok:
			return 0, ErrMaterializeBusy
		default:
			defer unlock()
		}
	}

	season, err := s.repo.Season.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("没有激活赛季，跳过物化")
			return 0, nil
		}
		return 0, err
	}

	var created int64
	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := ensureScheduleTeams(ctx, txRepo, s.logger); err != nil {
			return err
		}

		slots, err := txRepo.RecurringSlot.ListBySeason(ctx, season.SeasonID)
		if err != nil {
			return err
		}
		byWeekday, err := s.resolveSlots(ctx, txRepo, slots)
		if err != nil {
			return err
		}

		existing, err := txRepo.TrainingSession.ListKeysInRange(ctx, start, end)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(existing))
		for i := range existing {
			seen[existing[i].Key()] = struct{}{}
		}

		var candidates []model.TrainingSession
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, rs := range byWeekday[model.Weekday(d)] {
				key := model.SessionKey(rs.teamID, d, rs.slot.StartTime)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				teamID := rs.teamID
				session := model.TrainingSession{
					TeamID:      &teamID,
					SessionDate: d,
					StartTime:   rs.slot.StartTime,
					EndTime:     rs.slot.EndTime,
					Notes:       rs.slot.Notes(),
				}
				session.Version = 1
				candidates = append(candidates, session)
			}
		}

		created, err = txRepo.TrainingSession.BatchCreateIgnoreConflicts(ctx, candidates)
		if err != nil {
			return err
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, err
	}
	return int(created), nil
}

// resolveSlots 每个模板只解析一次球队，按星期分组
func (s *materializeService) resolveSlots(ctx context.Context, repo *repository.Repository, slots []model.RecurringSlot) ([7][]resolvedSlot, error) {
	var byWeekday [7][]resolvedSlot
	for _, slot := range slots {
		if slot.Weekday < 0 || slot.Weekday > 6 {
			s.logger.Warn("跳过 weekday 越界的模板", zap.String("slot_id", slot.SlotID), zap.Int("weekday", slot.Weekday))
			continue
		}

		var teamID string
		switch {
		case slot.TeamID != nil && *slot.TeamID != "":
			teamID = *slot.TeamID
		case slot.Title != nil && NormalizeTeamLabel(*slot.Title) != "":
			team, err := resolveTeam(ctx, repo, *slot.Title, s.logger)
			if err != nil {
				return byWeekday, err
			}
			teamID = team.TeamID
		default:
			s.logger.Warn("模板既无球队也无标题，跳过", zap.String("slot_id", slot.SlotID))
			continue
		}

		byWeekday[slot.Weekday] = append(byWeekday[slot.Weekday], resolvedSlot{teamID: teamID, slot: slot})
	}
	return byWeekday, nil
}

// ────────────────────── 便捷入口 ──────────────────────

func (s *materializeService) MaterializeRange(ctx context.Context, req *dto.MaterializeRequest) (*dto.MaterializeResponse, error) {
	start := s.clock.Today()
	if req.Start != "" {
		t, err := parseDate(req.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: start=%q", ErrMaterializeRangeInvalid, req.Start)
		}
		start = t
	}

	end := start.AddDate(0, 0, s.manualDefaultDays)
	if req.End != "" {
		t, err := parseDate(req.End)
		if err != nil {
			return nil, fmt.Errorf("%w: end=%q", ErrMaterializeRangeInvalid, req.End)
		}
		end = t
	}

	return s.run(ctx, metrics.TriggerHTTP, start, end)
}

func (s *materializeService) MaterializeMonth(ctx context.Context, year, month int) (*dto.MaterializeResponse, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, fmt.Errorf("%w: year=%d month=%d", ErrMaterializeRangeInvalid, year, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return s.run(ctx, metrics.TriggerMonth, start, end)
}

func (s *materializeService) MaterializeUpcoming(ctx context.Context, trigger string, days int) (*dto.MaterializeResponse, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days=%d", ErrMaterializeRangeInvalid, days)
	}
	start := s.clock.Today()
	return s.run(ctx, trigger, start, start.AddDate(0, 0, days))
}

func (s *materializeService) run(ctx context.Context, trigger string, start, end time.Time) (*dto.MaterializeResponse, error) {
	created, err := s.Materialize(ctx, trigger, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.MaterializeResponse{
		Created: created,
		Start:   formatDate(start),
		End:     formatDate(end),
	}, nil
}

func exceedsMaterializeCap(start, end time.Time) bool {
	return end.After(start.AddDate(0, 0, MaxMaterializeDays))
}
