package models

import "time"

const (
	// DefaultStateTTL время жизни незавершённого диалога
	DefaultStateTTL = 24 * time.Hour

	// InviteLinkTTL срок действия одноразовой ссылки в канал курса
	InviteLinkTTL = 24 * time.Hour

	// InviteMemberLimit сколько человек может войти по одной ссылке
	InviteMemberLimit = 1

	// BroadcastInterval пауза между получателями рассылки
	BroadcastInterval = 50 * time.Millisecond

	// BroadcastProgressEvery как часто обновлять прогресс рассылки
	BroadcastProgressEvery = 10

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// PendingPreviewLimit сколько ожидающих платежей показывать админу
	PendingPreviewLimit = 5

	// RecentUsersLimit сколько последних пользователей показывать в панели
	RecentUsersLimit = 10

	// AuditDetailsLimit длина текста рассылки, сохраняемая в журнале
	AuditDetailsLimit = 100

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000
)

// Regions are the fixed region choices offered during registration.
var Regions = []string{
	"Toshkent shahri",
	"Toshkent viloyati",
	"Andijon",
	"Buxoro",
	"Farg'ona",
	"Jizzax",
	"Xorazm",
	"Namangan",
	"Navoiy",
	"Qashqadaryo",
	"Qoraqalpog'iston",
	"Samarqand",
	"Sirdaryo",
	"Surxondaryo",
}

// IsKnownRegion reports whether region is one of Regions.
func IsKnownRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}
