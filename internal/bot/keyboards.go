package bot

import (
	"fmt"

	"marafon/internal/flow"
	"marafon/internal/models"
	"marafon/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Telefon raqamni ulashish"),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

func subscriptionKeyboard(channel string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if url := service.ChannelURL(channel); url != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Kanalga obuna bo'lish", url),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Obunani tekshirish", flow.CallbackCheckSubscription),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// regionsKeyboard раскладывает регионы по два в ряд.
func regionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(models.Regions); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(models.Regions[i], flow.PrefixRegion+models.Regions[i]),
		}
		if i+1 < len(models.Regions) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(models.Regions[i+1], flow.PrefixRegion+models.Regions[i+1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func coursesKeyboard(courses *models.CourseCatalog) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, tier := range courses.All() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(courseButtonText(tier), flow.PrefixCourse+tier.Key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func courseCardKeyboard(courseKey string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 To'lov qilish", flow.PrefixPay+courseKey),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Ortga", flow.CallbackBackToCourses),
		),
	)
}

func paymentKeyboard(courseKey string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Karta raqamini nusxalash", flow.PrefixCopyCard+courseKey),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📸 Chekni yuborish", flow.PrefixSendReceipt+courseKey),
		),
	)
}

func restartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Boshiga qaytish", flow.CallbackRestart),
		),
	)
}

func adminDecisionKeyboard(paymentID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Tasdiqlash", fmt.Sprintf("%s%d", flow.PrefixApprove, paymentID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Rad etish", fmt.Sprintf("%s%d", flow.PrefixReject, paymentID)),
		),
	)
}

func rejectionKeyboard(paymentID int64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, reason := range models.RejectionReasons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(reason, fmt.Sprintf("%s%d:%d", flow.PrefixRejectReason, paymentID, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reinviteKeyboard(paymentID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Havolani qayta yuborish", fmt.Sprintf("%s%d", flow.PrefixReinvite, paymentID)),
		),
	)
}

func adminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Statistika", flow.CallbackAdminStats),
			tgbotapi.NewInlineKeyboardButtonData("👥 Foydalanuvchilar", flow.CallbackAdminUsers),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Xabar yuborish", flow.CallbackAdminMessage),
			tgbotapi.NewInlineKeyboardButtonData("📢 Umumiy xabar", flow.CallbackAdminBroadcast),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Excel export", flow.CallbackAdminExport),
			tgbotapi.NewInlineKeyboardButtonData("💳 To'lovlar", flow.CallbackAdminPayments),
		),
	)
}
