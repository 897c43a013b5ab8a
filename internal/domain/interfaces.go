package domain

import (
	"context"
	"time"

	"marafon/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository is the persistence gateway. Implementations return
// database.ErrNotFound and database.ErrAlreadyDecided for the respective
// conditions.
type Repository interface {
	UpsertUser(ctx context.Context, user *models.UserProfile) error
	GetUser(ctx context.Context, userID int64) (*models.UserProfile, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListRecentUsers(ctx context.Context, limit int) ([]*models.UserProfile, error)
	InsertPayment(ctx context.Context, payment *models.Payment) (int64, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	DecidePayment(ctx context.Context, id int64, status models.PaymentStatus, adminID int64, reason string) error
	ListPendingPayments(ctx context.Context) ([]*models.Payment, error)
	GetStatistics(ctx context.Context, now time.Time) (*models.Statistics, error)
	ListUsersForExport(ctx context.Context) ([]models.ExportRow, error)
	AppendAuditLog(ctx context.Context, action *models.AdminAction) error
	Ping(ctx context.Context) error
	Close() error
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data models.FlowData) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendRemoveKeyboard(chatID int64, text string) (tgbotapi.Message, error)
	SendPhoto(chatID int64, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendDocument(chatID int64, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendVideo(chatID int64, fileID, caption string) (tgbotapi.Message, error)
	SendFile(chatID int64, fileName string, data []byte, caption string) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditCaption(chatID int64, messageID int, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditKeyboard(chatID int64, messageID int, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string) error
	AnswerCallbackAlert(callbackID, text string) error
	IsChannelMember(channel string, userID int64) (bool, error)
	CreateInviteLink(channel, name string, expireAt time.Time, memberLimit int) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type UserService interface {
	IsAdmin(userID int64) bool
	AdminIDs() []int64
	GetUser(ctx context.Context, userID int64) (*models.UserProfile, error)
	Register(ctx context.Context, profile *models.UserProfile) error
	ListUserIDs(ctx context.Context) ([]int64, error)
	RecentUsers(ctx context.Context, limit int) ([]*models.UserProfile, error)
}

type PaymentService interface {
	Submit(ctx context.Context, userID int64, courseKey, fileID, kind string) (*models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	Approve(ctx context.Context, id, adminID int64) (*models.Payment, error)
	Reject(ctx context.Context, id, adminID int64, reasonIdx int) (*models.Payment, error)
	PendingPayments(ctx context.Context) ([]*models.Payment, error)
}

type AdminService interface {
	LogAction(ctx context.Context, adminID int64, actionType string, target *int64, details string)
	Statistics(ctx context.Context) (*models.Statistics, error)
	ExportRows(ctx context.Context) ([]models.ExportRow, error)
}

type Broadcaster interface {
	Deliver(ctx context.Context, userID int64, header string, msg models.OutboundMessage) error
	Broadcast(ctx context.Context, userIDs []int64, header string, msg models.OutboundMessage, progress func(done, total int)) models.BroadcastResult
}

type SpreadsheetExporter interface {
	Export(rows []models.ExportRow) ([]byte, error)
}

type SyncWorker interface {
	EnqueuePayment(ctx context.Context, payment *models.Payment) error
	EnqueueUsers(ctx context.Context, rows []models.ExportRow) error
}
