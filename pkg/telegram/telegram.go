package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/config"
)

const (
	welcomeText = "Добре дошли! 📲\n" +
		"Натиснете бутона по-долу или въведете телефонния си номер (пример: 0888123456), за да активирате известия."
	shareButtonText = "📱 Сподели номер"
)

// PhoneHandler 收到家长手机号时的回调，返回要回复给用户的文本
type PhoneHandler func(ctx context.Context, phone string, chatID int64) (reply string, err error)

// Client Telegram Bot 封装：发送通知、长轮询接收家长绑定消息
type Client struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// New 创建 Bot 客户端（会调用 getMe 校验 Token）
func New(cfg *config.TelegramConfig, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("Telegram Bot 初始化失败: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("Telegram Bot 已登录", zap.String("username", api.Self.UserName))
	return &Client{api: api, logger: logger}, nil
}

// Send 发送纯文本消息
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("发送 Telegram 消息失败: %w", err)
	}
	return nil
}

// Listen 长轮询接收更新，直到 ctx 取消
func (c *Client) Listen(ctx context.Context, onPhone PhoneHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				c.handleMessage(ctx, update.Message, onPhone)
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, m *tgbotapi.Message, onPhone PhoneHandler) {
	chatID := m.Chat.ID
	kind, phone := classify(m)

	switch kind {
	case messageStart:
		reply := tgbotapi.NewMessage(chatID, welcomeText)
		reply.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(shareButtonText)),
		)
		if _, err := c.api.Send(reply); err != nil {
			c.logger.Warn("发送欢迎消息失败", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	case messagePhone:
		text, err := onPhone(ctx, phone, chatID)
		if err != nil {
			c.logger.Error("绑定手机号失败", zap.Int64("chat_id", chatID), zap.Error(err))
			text = "❌ Възникна грешка при регистрацията. Моля, опитайте отново."
		}
		if text == "" {
			return
		}
		reply := tgbotapi.NewMessage(chatID, text)
		reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		if _, err := c.api.Send(reply); err != nil {
			c.logger.Warn("发送绑定结果失败", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

type messageKind int

const (
	messageIgnored messageKind = iota
	messageStart
	messagePhone
)

// classify 识别 /start、共享联系人和手动输入的手机号
func classify(m *tgbotapi.Message) (messageKind, string) {
	if m == nil {
		return messageIgnored, ""
	}
	if m.Contact != nil {
		// 只接受用户分享自己的联系人
		if m.From != nil && m.Contact.UserID != 0 && m.Contact.UserID != m.From.ID {
			return messageIgnored, ""
		}
		return messagePhone, m.Contact.PhoneNumber
	}
	if m.IsCommand() {
		if m.Command() == "start" {
			return messageStart, ""
		}
		return messageIgnored, ""
	}

	text := strings.TrimSpace(m.Text)
	if strings.EqualFold(text, "старт") {
		return messageStart, ""
	}
	if looksLikePhone(text) {
		return messagePhone, text
	}
	return messageIgnored, ""
}

func looksLikePhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 9
}
