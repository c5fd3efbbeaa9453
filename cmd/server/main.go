package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/config"
	"github.com/anatoli9010/volleyball-club-management/internal/api/handler"
	"github.com/anatoli9010/volleyball-club-management/internal/api/router"
	"github.com/anatoli9010/volleyball-club-management/internal/job"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/database"
	"github.com/anatoli9010/volleyball-club-management/pkg/jwt"
	applogger "github.com/anatoli9010/volleyball-club-management/pkg/logger"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
	"github.com/anatoli9010/volleyball-club-management/pkg/redis"
	"github.com/anatoli9010/volleyball-club-management/pkg/telegram"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("CLUB_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Scheduler.Timezone),
	)

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		logger.Fatal("加载时区失败", zap.Error(err))
	}

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	m := metrics.New()
	deps := service.Deps{
		Clock:   service.NewClock(loc),
		Metrics: m,
	}
	healthChecks := map[string]handler.HealthCheck{
		"db": sqlDB.PingContext,
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，物化锁与日历限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		deps.Locker = rdb
		healthChecks["redis"] = rdb.Ping
	}

	// 5. Telegram Bot（可选）
	var bot *telegram.Client
	if cfg.Telegram.Enabled() {
		bot, err = telegram.New(&cfg.Telegram, logger)
		if err != nil {
			logger.Warn("Telegram 初始化失败，家长通知将不可用", zap.Error(err))
			bot = nil
		} else {
			deps.Sender = bot
		}
	}

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, handler.NewHealthHandler(healthChecks), jwtMgr, rdb, m, logger)

	// 后台任务共用的生命周期
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// 8. 定时物化任务
	var materializeJob *job.MaterializeJob
	if cfg.Scheduler.Enabled {
		materializeJob = job.NewMaterializeJob(job.MaterializeJobConfig{
			Spec:          cfg.Scheduler.MaterializeCron,
			LookaheadDays: cfg.Scheduler.LookaheadDays,
			Location:      loc,
			AdminChatID:   cfg.Telegram.AdminChatID,
		}, svc.Materialize, deps.Sender, logger)
		if err := materializeJob.Start(); err != nil {
			logger.Fatal("定时物化任务启动失败", zap.Error(err))
		}
	}

	// 定时催缴只在消息通道可用时启动
	var reminderJob *job.PaymentReminderJob
	if spec := strings.TrimSpace(cfg.Scheduler.PaymentReminderCron); spec != "" && deps.Sender != nil {
		reminderJob = job.NewPaymentReminderJob(job.PaymentReminderJobConfig{
			Spec:        spec,
			Location:    loc,
			AdminChatID: cfg.Telegram.AdminChatID,
		}, svc.Payment, deps.Sender, logger)
		if err := reminderJob.Start(); err != nil {
			logger.Fatal("定时催缴任务启动失败", zap.Error(err))
		}
	}

	// 9. Telegram 家长绑定监听
	if bot != nil {
		go bot.Listen(bgCtx, svc.Notification.HandleTelegramPhone)
	}

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	stopBackground()
	if materializeJob != nil {
		materializeJob.Stop(ctx)
	}
	if reminderJob != nil {
		reminderJob.Stop(ctx)
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
