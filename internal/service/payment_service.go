package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

// ── 会费模块业务错误 ──

var (
	ErrPaymentNotFound    = errors.New("缴费记录不存在")
	ErrPaymentAlreadyPaid = errors.New("该月会费已缴")
)

// paymentDueDay 每月该日之后仍未缴视为逾期
const paymentDueDay = 5

// PaymentService 月度会费登记、确认与催缴
type PaymentService interface {
	// List 返回某月全部（或某队）队员的缴费记录，缺失的记录按待缴补齐
	List(ctx context.Context, req *dto.ListPaymentsRequest) ([]dto.PaymentResponse, error)
	Create(ctx context.Context, req *dto.CreatePaymentRequest, callerID string) (*dto.PaymentResponse, error)
	PlayerHistory(ctx context.Context, playerID string) ([]dto.PaymentResponse, error)
	MarkPaid(ctx context.Context, id string, callerID string) (*dto.PaymentResponse, error)
	Remind(ctx context.Context, id string) (*dto.RemindResponse, error)
	// RemindAll 给某月所有待缴队员的家长发送提醒
	RemindAll(ctx context.Context, req *dto.RemindAllRequest) (*dto.RemindResponse, error)
	Summary(ctx context.Context) ([]dto.PaymentMonthSummary, error)
}

type paymentService struct {
	repo     *repository.Repository
	notifier NotificationService
	clock    Clock
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPaymentService 创建 PaymentService 实例；notifier 未启用时只登记不发送
func NewPaymentService(
	repo *repository.Repository,
	notifier NotificationService,
	clock Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{repo: repo, notifier: notifier, clock: clock, metrics: m, logger: logger}
}

// ────────────────────── 查询 ──────────────────────

func (s *paymentService) List(ctx context.Context, req *dto.ListPaymentsRequest) ([]dto.PaymentResponse, error) {
	year, month := s.period(req.Year, req.Month)

	players, err := s.repo.Player.List(ctx, req.TeamID)
	if err != nil {
		s.logger.Error("查询队员失败", zap.Error(err))
		return nil, err
	}
	ids := make([]string, 0, len(players))
	names := make(map[string]string, len(players))
	for _, p := range players {
		ids = append(ids, p.PlayerID)
		names[p.PlayerID] = p.FullName
	}

	if err := s.repo.Payment.EnsureMonth(ctx, ids, year, month); err != nil {
		s.logger.Error("补齐月度缴费记录失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}
	payments, err := s.repo.Payment.List(ctx, repository.PaymentFilter{Year: year, Month: month, PlayerIDs: ids})
	if err != nil {
		s.logger.Error("查询缴费记录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, s.toResponse(&payments[i], names[payments[i].PlayerID]))
	}
	// 与名册保持同样的姓名顺序
	order := make(map[string]int, len(ids))
	for i, id := range ids {
		order[id] = i
	}
	sortByPlayerOrder(result, order)
	return result, nil
}

func (s *paymentService) PlayerHistory(ctx context.Context, playerID string) ([]dto.PaymentResponse, error) {
	player, err := s.getPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.Payment.List(ctx, repository.PaymentFilter{PlayerIDs: []string{playerID}})
	if err != nil {
		s.logger.Error("查询缴费历史失败", zap.String("player_id", playerID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, s.toResponse(&payments[i], player.FullName))
	}
	return result, nil
}

func (s *paymentService) Summary(ctx context.Context) ([]dto.PaymentMonthSummary, error) {
	rows, err := s.repo.Payment.MonthlySummary(ctx)
	if err != nil {
		s.logger.Error("查询缴费汇总失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PaymentMonthSummary, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.PaymentMonthSummary{
			Year: r.Year, Month: r.Month,
			Total: r.Total, Paid: r.Paid, Unpaid: r.Total - r.Paid,
			PaidCents: r.PaidAmount,
		})
	}
	return result, nil
}

// ────────────────────── 登记与确认 ──────────────────────

func (s *paymentService) Create(ctx context.Context, req *dto.CreatePaymentRequest, callerID string) (*dto.PaymentResponse, error) {
	player, err := s.getPlayer(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		PlayerID:    player.PlayerID,
		Year:        req.Year,
		Month:       req.Month,
		AmountCents: req.AmountCents,
		Status:      model.PaymentPending,
		Note:        trimmedOrNil(req.Note),
	}
	payment.CreatedBy = &callerID
	payment.UpdatedBy = &callerID

	if err := s.repo.Payment.Upsert(ctx, payment); err != nil {
		s.logger.Error("登记缴费失败", zap.String("player_id", player.PlayerID), zap.Error(err))
		return nil, err
	}
	// 冲突时库中保留原主键，重新读取
	saved, err := s.repo.Payment.GetByPeriod(ctx, player.PlayerID, req.Year, req.Month)
	if err != nil {
		s.logger.Error("读取缴费记录失败", zap.String("player_id", player.PlayerID), zap.Error(err))
		return nil, err
	}

	s.notifyOne(ctx, player, paymentCreatedMessage(player.FullName, saved))
	resp := s.toResponse(saved, player.FullName)
	return &resp, nil
}

func (s *paymentService) MarkPaid(ctx context.Context, id string, callerID string) (*dto.PaymentResponse, error) {
	payment, err := s.getPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		return nil, ErrPaymentAlreadyPaid
	}

	if err := s.repo.Payment.MarkPaid(ctx, id, time.Now(), callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("确认缴费失败", zap.String("payment_id", id), zap.Error(err))
		return nil, err
	}
	payment, err = s.getPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	player, err := s.getPlayer(ctx, payment.PlayerID)
	if err != nil {
		return nil, err
	}
	s.notifyOne(ctx, player, paymentPaidMessage(player.FullName, payment))

	s.logger.Info("会费已确认", zap.String("payment_id", id), zap.String("caller", callerID))
	resp := s.toResponse(payment, player.FullName)
	return &resp, nil
}

// ────────────────────── 催缴 ──────────────────────

func (s *paymentService) Remind(ctx context.Context, id string) (*dto.RemindResponse, error) {
	if s.notifier == nil || !s.notifier.Enabled() {
		return nil, ErrNotifierDisabled
	}
	payment, err := s.getPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		return nil, ErrPaymentAlreadyPaid
	}
	player, err := s.getPlayer(ctx, payment.PlayerID)
	if err != nil {
		return nil, err
	}

	sent, err := sendToParents(ctx, s.notifier, s.metrics, s.logger, []parentMessage{
		{player: *player, text: paymentReminderMessage(player.FullName, payment)},
	})
	if err != nil {
		s.logger.Warn("发送催缴提醒失败", zap.String("payment_id", id), zap.Error(err))
	}
	return &dto.RemindResponse{Pending: 1, Sent: sent}, nil
}

func (s *paymentService) RemindAll(ctx context.Context, req *dto.RemindAllRequest) (*dto.RemindResponse, error) {
	if s.notifier == nil || !s.notifier.Enabled() {
		return nil, ErrNotifierDisabled
	}
	year, month := s.period(req.Year, req.Month)

	pending, err := s.repo.Payment.List(ctx, repository.PaymentFilter{Year: year, Month: month, Status: model.PaymentPending})
	if err != nil {
		s.logger.Error("查询待缴记录失败", zap.Error(err))
		return nil, err
	}
	if len(pending) == 0 {
		return &dto.RemindResponse{}, nil
	}

	ids := make([]string, 0, len(pending))
	for i := range pending {
		ids = append(ids, pending[i].PlayerID)
	}
	players, err := s.repo.Player.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询队员失败", zap.Error(err))
		return nil, err
	}
	byID := make(map[string]model.Player, len(players))
	for _, p := range players {
		byID[p.PlayerID] = p
	}

	msgs := make([]parentMessage, 0, len(pending))
	for i := range pending {
		p, ok := byID[pending[i].PlayerID]
		if !ok {
			continue
		}
		msgs = append(msgs, parentMessage{player: p, text: paymentReminderMessage(p.FullName, &pending[i])})
	}

	sent, err := sendToParents(ctx, s.notifier, s.metrics, s.logger, msgs)
	if err != nil {
		s.logger.Warn("批量催缴部分失败", zap.Error(err))
	}
	s.logger.Info("批量催缴完成",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("pending", len(pending)),
		zap.Int("sent", sent),
	)
	return &dto.RemindResponse{Pending: len(pending), Sent: sent}, nil
}

// ────────────────────── 辅助函数 ──────────────────────

// period 缺省取俱乐部时区下的当前月份
func (s *paymentService) period(year, month int) (int, int) {
	today := s.clock.Today()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	return year, month
}

// overdue 待缴且所属月份已过，或为当月且已过缴费日
func (s *paymentService) overdue(p *model.Payment) bool {
	if p.IsPaid() {
		return false
	}
	today := s.clock.Today()
	cur := today.Year()*12 + int(today.Month())
	due := p.Year*12 + p.Month
	return due < cur || (due == cur && today.Day() > paymentDueDay)
}

func (s *paymentService) getPayment(ctx context.Context, id string) (*model.Payment, error) {
	payment, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("查询缴费记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) getPlayer(ctx context.Context, id string) (*model.Player, error) {
	player, err := s.repo.Player.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		s.logger.Error("查询队员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return player, nil
}

// notifyOne 尽力通知单个家长；未启用或未绑定时静默跳过
func (s *paymentService) notifyOne(ctx context.Context, player *model.Player, text string) {
	if s.notifier == nil || !s.notifier.Enabled() {
		return
	}
	if _, err := sendToParents(ctx, s.notifier, s.metrics, s.logger, []parentMessage{{player: *player, text: text}}); err != nil {
		s.logger.Warn("发送缴费通知失败", zap.String("player_id", player.PlayerID), zap.Error(err))
	}
}

func (s *paymentService) toResponse(p *model.Payment, playerName string) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:          p.PaymentID,
		PlayerID:    p.PlayerID,
		PlayerName:  playerName,
		Year:        p.Year,
		Month:       p.Month,
		AmountCents: p.AmountCents,
		Status:      p.Status,
		Note:        deref(p.Note),
		Overdue:     s.overdue(p),
	}
	if p.PaidAt != nil {
		resp.PaidAt = p.PaidAt.Format(time.RFC3339)
	}
	return resp
}

func sortByPlayerOrder(items []dto.PaymentResponse, order map[string]int) {
	sort.SliceStable(items, func(i, j int) bool {
		return order[items[i].PlayerID] < order[items[j].PlayerID]
	})
}

// formatAmount стотинки → "12.50"
func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func formatPeriod(p *model.Payment) string {
	return fmt.Sprintf("%02d.%d", p.Month, p.Year)
}

func paymentReminderMessage(name string, p *model.Payment) string {
	msg := fmt.Sprintf("🔔 Напомняне: Таксата за %s за %s е неплатена.", formatPeriod(p), name)
	if p.AmountCents > 0 {
		msg += fmt.Sprintf(" Сума: %s лв.", formatAmount(p.AmountCents))
	}
	return msg
}

func paymentPaidMessage(name string, p *model.Payment) string {
	return fmt.Sprintf("✅ Плащането за %s за %s е отбелязано като получено.", formatPeriod(p), name)
}

func paymentCreatedMessage(name string, p *model.Payment) string {
	msg := fmt.Sprintf("💳 Добавено е плащане за %s за %s: %s лв.", name, formatPeriod(p), formatAmount(p.AmountCents))
	if note := strings.TrimSpace(deref(p.Note)); note != "" {
		msg += "\n📝 " + note
	}
	return msg
}
