package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
)

// reminderTimeout 单次催缴的最长执行时间
const reminderTimeout = 2 * time.Minute

// PaymentReminderJobConfig 定时催缴任务配置
type PaymentReminderJobConfig struct {
	Spec        string
	Location    *time.Location
	AdminChatID int64
}

// PaymentReminderJob 按 cron 给当月仍未缴费的队员家长发送提醒
type PaymentReminderJob struct {
	cfg    PaymentReminderJobConfig
	svc    service.PaymentService
	sender service.Sender
	cron   *cron.Cron
	logger *zap.Logger
}

// NewPaymentReminderJob 创建定时催缴任务；sender 仅用于管理员汇总，可为 nil
func NewPaymentReminderJob(cfg PaymentReminderJobConfig, svc service.PaymentService, sender service.Sender, logger *zap.Logger) *PaymentReminderJob {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger.Sugar()}

	return &PaymentReminderJob{
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
func (j *PaymentReminderJob) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
		defer cancel()
		j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("注册催缴任务失败: %w", err)
	}

	j.cron.Start()
	j.logger.Info("定时催缴任务已启动", zap.String("spec", j.cfg.Spec))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束（或 ctx 到期）
func (j *PaymentReminderJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
		j.logger.Info("定时催缴任务已停止")
	case <-ctx.Done():
		j.logger.Warn("等待催缴任务结束超时")
	}
}

// RunOnce 对当月待缴记录催缴一次
func (j *PaymentReminderJob) RunOnce(ctx context.Context) {
	resp, err := j.svc.RemindAll(ctx, &dto.RemindAllRequest{})
	if err != nil {
		j.logger.Error("定时催缴失败", zap.Error(err))
		sendAdmin(ctx, j.sender, j.cfg.AdminChatID, j.logger, fmt.Sprintf("⚠️ Грешка при напомняне за такси: %v", err))
		return
	}

	j.logger.Info("定时催缴完成", zap.Int("pending", resp.Pending), zap.Int("sent", resp.Sent))
	if resp.Pending > 0 {
		sendAdmin(ctx, j.sender, j.cfg.AdminChatID, j.logger,
			fmt.Sprintf("💳 Неплатени такси: %d, изпратени напомняния: %d", resp.Pending, resp.Sent))
	}
}
