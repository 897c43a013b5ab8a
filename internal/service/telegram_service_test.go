package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegramSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}

func (m *mockTelegramSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.UpdatesChannel)
}

func (m *mockTelegramSender) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}

func (m *mockTelegramSender) StopReceivingUpdates() {
	m.Called()
}

func apiResult(t *testing.T, v interface{}) *tgbotapi.APIResponse {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return &tgbotapi.APIResponse{Ok: true, Result: raw}
}

func TestTelegramService(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)

	t.Run("SendMessage", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.Text == "hello" && msg.ChatID == 123
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendMessage(123, "hello")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("SendPhotoWithKeyboard", func(t *testing.T) {
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ok", "approve:1"),
		))
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			photo, ok := c.(tgbotapi.PhotoConfig)
			return ok && photo.Caption == "receipt" && photo.ReplyMarkup != nil
		})).Return(tgbotapi.Message{MessageID: 7}, nil).Once()

		msg, err := svc.SendPhoto(1, "file-1", "receipt", &kb)
		assert.NoError(t, err)
		assert.Equal(t, 7, msg.MessageID)
	})

	t.Run("SendFile", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			doc, ok := c.(tgbotapi.DocumentConfig)
			if !ok {
				return false
			}
			file, ok := doc.File.(tgbotapi.FileBytes)
			return ok && file.Name == "users.xlsx" && len(file.Bytes) == 3
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendFile(1, "users.xlsx", []byte{1, 2, 3}, "export")
		assert.NoError(t, err)
	})

	t.Run("EditCaptionDropsButtons", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			edit, ok := c.(tgbotapi.EditMessageCaptionConfig)
			return ok && edit.Caption == "done" && edit.ReplyMarkup == nil
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.EditCaption(1, 2, "done", nil)
		assert.NoError(t, err)
	})

	t.Run("AnswerCallback", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			cb, ok := c.(tgbotapi.CallbackConfig)
			return ok && !cb.ShowAlert
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		err := svc.AnswerCallback("cb123", "ok")
		assert.NoError(t, err)
	})

	t.Run("AnswerCallbackAlert", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			cb, ok := c.(tgbotapi.CallbackConfig)
			return ok && cb.ShowAlert && cb.Text == "already"
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		assert.NoError(t, svc.AnswerCallbackAlert("cb123", "already"))
		mockSender.AssertExpectations(t)
	})
}

func TestTelegramService_IsChannelMember(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"member", true},
		{"administrator", true},
		{"creator", true},
		{"left", false},
		{"kicked", false},
		{"restricted", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			mockSender := new(mockTelegramSender)
			svc := NewTelegramService(mockSender)

			mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
				cfg, ok := c.(tgbotapi.GetChatMemberConfig)
				return ok && cfg.SuperGroupUsername == "@marafon" && cfg.UserID == 42
			})).Return(apiResult(t, map[string]interface{}{"status": tt.status, "user": map[string]interface{}{"id": 42}}), nil).Once()

			got, err := svc.IsChannelMember("@marafon", 42)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("RequestError", func(t *testing.T) {
		mockSender := new(mockTelegramSender)
		svc := NewTelegramService(mockSender)
		mockSender.On("Request", mock.Anything).Return(nil, errors.New("chat not found")).Once()

		got, err := svc.IsChannelMember("-100123", 42)
		assert.Error(t, err)
		assert.False(t, got)
	})
}

func TestTelegramService_CreateInviteLink(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)
	expire := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		cfg, ok := c.(tgbotapi.CreateChatInviteLinkConfig)
		return ok &&
			cfg.ChatID == -100500 &&
			cfg.Name == "User_42" &&
			cfg.MemberLimit == 1 &&
			cfg.ExpireDate == int(expire.Unix())
	})).Return(apiResult(t, map[string]interface{}{"invite_link": "https://t.me/+abc"}), nil).Once()

	link, err := svc.CreateInviteLink("-100500", "User_42", expire, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+abc", link)
}

func TestChatConfig(t *testing.T) {
	assert.Equal(t, tgbotapi.ChatConfig{ChatID: -100123}, chatConfig("-100123"))
	assert.Equal(t, tgbotapi.ChatConfig{SuperGroupUsername: "@kanal"}, chatConfig("kanal"))
	assert.Equal(t, tgbotapi.ChatConfig{SuperGroupUsername: "@kanal"}, chatConfig(" @kanal "))
}

func TestChannelURL(t *testing.T) {
	assert.Equal(t, "https://t.me/kanal", ChannelURL("@kanal"))
	assert.Equal(t, "", ChannelURL("-100123"))
}
