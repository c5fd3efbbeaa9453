package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrPhoneInvalid       = errors.New("手机号格式无效")
	ErrPhoneNotRegistered = errors.New("该手机号未登记为任何队员的家长电话")
	ErrNotifierDisabled   = errors.New("未配置消息通道")
)

// phoneDigits 归一化后保留的位数（去掉国家码和前导 0）
const phoneDigits = 9

// 家长在 Telegram 中看到的回复
const (
	replyPhoneInvalid = "❌ Невалиден формат на телефон. Пример: 0888123456"
	replyNotFound     = "❌ Този номер не е намерен в системата.\nМоля, свържете се с треньора, за да ви добави."
	replyBound        = "✅ Вашият номер беше регистриран успешно за %d състезател(и). Ще получавате известия за присъствията."
	replyFailed       = "⚠️ Възникна грешка. Моля, опитайте отново по-късно."
)

// Sender 消息发送通道，实现为 Telegram Bot
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// NotificationService 家长手机号与聊天的绑定及消息发送
type NotificationService interface {
	Bind(ctx context.Context, req *dto.BindChatRequest) (*dto.BindChatResponse, error)
	// HandleTelegramPhone 处理 Bot 收到的手机号，返回给用户的回复
	HandleTelegramPhone(ctx context.Context, phone string, chatID int64) (string, error)
	// ChatIDs 手机号（归一化）→ chat_id
	ChatIDs(ctx context.Context, phones []string) (map[string]int64, error)
	Notify(ctx context.Context, chatID int64, text string) error
	Enabled() bool
}

type notificationService struct {
	repo   *repository.Repository
	sender Sender
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例；sender 可为 nil
func NewNotificationService(repo *repository.Repository, sender Sender, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, sender: sender, logger: logger}
}

// NormalizePhone 只保留数字并取最后 9 位；不足 9 位返回空串
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if len(digits) < phoneDigits {
		return ""
	}
	return digits[len(digits)-phoneDigits:]
}

// ────────────────────── Bind ──────────────────────

func (s *notificationService) Bind(ctx context.Context, req *dto.BindChatRequest) (*dto.BindChatResponse, error) {
	phone := NormalizePhone(req.Phone)
	if phone == "" {
		return nil, ErrPhoneInvalid
	}

	players, err := s.repo.Player.ListWithPhone(ctx)
	if err != nil {
		s.logger.Error("查询家长电话失败", zap.Error(err))
		return nil, err
	}
	matched := 0
	for i := range players {
		if NormalizePhone(deref(players[i].ParentPhone)) == phone {
			matched++
		}
	}
	if matched == 0 {
		return nil, ErrPhoneNotRegistered
	}

	binding := &model.ChatBinding{Phone: phone, ChatID: req.ChatID, BoundAt: time.Now()}
	if err := s.repo.ChatBinding.Upsert(ctx, binding); err != nil {
		s.logger.Error("保存手机号绑定失败", zap.String("phone", phone), zap.Error(err))
		return nil, err
	}

	s.logger.Info("家长手机号已绑定", zap.String("phone", phone), zap.Int("players", matched))
	return &dto.BindChatResponse{Phone: phone, ChatID: req.ChatID, MatchedPlayers: matched}, nil
}

func (s *notificationService) HandleTelegramPhone(ctx context.Context, phone string, chatID int64) (string, error) {
	resp, err := s.Bind(ctx, &dto.BindChatRequest{Phone: phone, ChatID: chatID})
	switch {
	case errors.Is(err, ErrPhoneInvalid):
		return replyPhoneInvalid, nil
	case errors.Is(err, ErrPhoneNotRegistered):
		return replyNotFound, nil
	case err != nil:
		return replyFailed, err
	}
	return fmt.Sprintf(replyBound, resp.MatchedPlayers), nil
}

// ────────────────────── 查询与发送 ──────────────────────

func (s *notificationService) ChatIDs(ctx context.Context, phones []string) (map[string]int64, error) {
	normalized := make([]string, 0, len(phones))
	for _, p := range phones {
		if n := NormalizePhone(p); n != "" {
			normalized = append(normalized, n)
		}
	}

	bindings, err := s.repo.ChatBinding.ListByPhones(ctx, normalized)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	result := make(map[string]int64, len(bindings))
	for _, b := range bindings {
		result[b.Phone] = b.ChatID
	}
	return result, nil
}

func (s *notificationService) Notify(ctx context.Context, chatID int64, text string) error {
	if s.sender == nil {
		return ErrNotifierDisabled
	}
	return s.sender.Send(ctx, chatID, text)
}

func (s *notificationService) Enabled() bool {
	return s.sender != nil
}
