package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/pkg/metrics"
)

// 通知并发上限
const notifyWorkers = 4

// parentMessage 发给某位队员家长的一条消息
type parentMessage struct {
	player model.Player
	text   string
}

// sendToParents 查出家长已绑定的 chat，通过工作池并发发送，返回成功条数
// 未绑定的家长直接跳过
func sendToParents(ctx context.Context, notifier NotificationService, m *metrics.Metrics, logger *zap.Logger, msgs []parentMessage) (int, error) {
	phones := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.player.ParentPhone != nil {
			phones = append(phones, *msg.player.ParentPhone)
		}
	}
	if len(phones) == 0 {
		return 0, nil
	}
	chats, err := notifier.ChatIDs(ctx, phones)
	if err != nil {
		return 0, err
	}
	if len(chats) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(notifyWorkers)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var sent atomic.Int32
	var workers sync.WaitGroup
	var submitErr error
	for _, msg := range msgs {
		chatID, ok := chats[NormalizePhone(deref(msg.player.ParentPhone))]
		if !ok {
			continue
		}
		text := msg.text
		player := msg.player.PlayerID

		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if err := notifier.Notify(ctx, chatID, text); err != nil {
				m.ObserveNotification("failed")
				logger.Warn("发送家长通知失败", zap.String("player_id", player), zap.Error(err))
				return
			}
			m.ObserveNotification("sent")
			sent.Add(1)
		}); err != nil {
			workers.Done()
			submitErr = errors.Join(submitErr, err)
		}
	}
	workers.Wait()

	return int(sent.Load()), submitErr
}
