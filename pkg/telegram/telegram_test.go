package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func command(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}
}

func TestClassify(t *testing.T) {
	from := &tgbotapi.User{ID: 42}

	tests := []struct {
		name      string
		msg       *tgbotapi.Message
		wantKind  messageKind
		wantPhone string
	}{
		{"nil", nil, messageIgnored, ""},
		{"start 命令", command("/start"), messageStart, ""},
		{"其他命令", command("/help"), messageIgnored, ""},
		{"保加利亚语 старт", &tgbotapi.Message{Text: "Старт"}, messageStart, ""},
		{"手动输入号码", &tgbotapi.Message{Text: "0888 123 456"}, messagePhone, "0888 123 456"},
		{"国际格式", &tgbotapi.Message{Text: "+359888123456"}, messagePhone, "+359888123456"},
		{"普通文本", &tgbotapi.Message{Text: "здравейте"}, messageIgnored, ""},
		{"过短号码", &tgbotapi.Message{Text: "12345"}, messageIgnored, ""},
		{
			"分享自己的联系人",
			&tgbotapi.Message{From: from, Contact: &tgbotapi.Contact{PhoneNumber: "359888123456", UserID: 42}},
			messagePhone, "359888123456",
		},
		{
			"分享他人联系人",
			&tgbotapi.Message{From: from, Contact: &tgbotapi.Contact{PhoneNumber: "359888123456", UserID: 7}},
			messageIgnored, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, phone := classify(tt.msg)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantPhone, phone)
		})
	}
}
