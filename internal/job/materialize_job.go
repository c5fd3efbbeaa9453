// Package job 定时任务
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

// runTimeout 单次物化的最长执行时间，须不超过 service.MaterializeLockTTL
const runTimeout = 4 * time.Minute

// MaterializeJobConfig 定时物化任务配置
type MaterializeJobConfig struct {
	Spec          string
	LookaheadDays int
	Location      *time.Location
	// AdminChatID 非 0 且 Sender 可用时，把结果推送给管理员
	AdminChatID int64
}

// MaterializeJob 每日把未来若干天的周期模板物化为训练课
type MaterializeJob struct {
	cfg    MaterializeJobConfig
	svc    service.MaterializeService
	sender service.Sender
	cron   *cron.Cron
	logger *zap.Logger
}

// NewMaterializeJob 创建定时物化任务；sender 可为 nil
func NewMaterializeJob(cfg MaterializeJobConfig, svc service.MaterializeService, sender service.Sender, logger *zap.Logger) *MaterializeJob {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger.Sugar()}

	return &MaterializeJob{
		cfg:    cfg,
		svc:    svc,
		sender: sender,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Start 注册并启动调度
func (j *MaterializeJob) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("注册物化任务失败: %w", err)
	}

	j.cron.Start()
	j.logger.Info("定时物化任务已启动",
		zap.String("spec", j.cfg.Spec),
		zap.Int("lookahead_days", j.cfg.LookaheadDays),
	)
	return nil
}

// Stop 停止调度并等待正在执行的任务结束（或 ctx 到期）
func (j *MaterializeJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
		j.logger.Info("定时物化任务已停止")
	case <-ctx.Done():
		j.logger.Warn("等待物化任务结束超时")
	}
}

// RunOnce 执行一次物化；失败只记录日志，下次调度会重试
func (j *MaterializeJob) RunOnce(ctx context.Context) {
	resp, err := j.svc.MaterializeUpcoming(ctx, metrics.TriggerCron, j.cfg.LookaheadDays)
	if err != nil {
		j.logger.Error("定时物化失败", zap.Error(err))
		j.notifyAdmin(ctx, fmt.Sprintf("⚠️ Грешка при генериране на тренировки: %v", err))
		return
	}

	j.logger.Info("定时物化完成",
		zap.Int("created", resp.Created),
		zap.String("start", resp.Start),
		zap.String("end", resp.End),
	)
	if resp.Created > 0 {
		j.notifyAdmin(ctx, fmt.Sprintf("🗓 Генерирани тренировки: %d (%s .. %s)", resp.Created, resp.Start, resp.End))
	}
}

func (j *MaterializeJob) notifyAdmin(ctx context.Context, text string) {
	sendAdmin(ctx, j.sender, j.cfg.AdminChatID, j.logger, text)
}

// sendAdmin 尽力推送给管理员；sender 为 nil 或未配置 chat 时跳过
func sendAdmin(ctx context.Context, sender service.Sender, chatID int64, logger *zap.Logger, text string) {
	if sender == nil || chatID == 0 {
		return
	}
	if err := sender.Send(ctx, chatID, text); err != nil {
		logger.Warn("管理员通知发送失败", zap.Error(err))
	}
}

// cronLogger 把 cron 的内部日志转到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
