package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"marafon/internal/models"
)

// Тексты бота
const (
	msgWelcome              = "👋 Salom! Ozish marafoniga xush kelibsiz!\n\n📱 Iltimos, telefon raqamingizni ulashing:"
	msgRequestName          = "✍️ Ism va familiyangizni kiriting:"
	msgRequestAge           = "🎂 Yoshingizni kiriting (13-80):"
	msgRequestRegion        = "📍 Qaysi viloyatdansiz?"
	msgRequestHeight        = "📏 Bo'yingizni kiriting (120-220 sm):"
	msgRequestWeight        = "⚖️ Vazningizni kiriting (30-300 kg):"
	msgRegistrationComplete = "✅ Ro'yxatdan o'tish yakunlandi!\n\nEndi kurs tarifini tanlang:"
	msgPaymentPending       = "⏳ To'lovingiz tekshirilmoqda. Tez orada javob beramiz!"
	msgPaymentApproved      = "✅ To'lovingiz tasdiqlandi! Kursga xush kelibsiz!"
	msgPaymentRejected      = "❌ To'lovingiz rad etildi.\nSabab: %s\n\nQaytadan urinib ko'ring."
	msgInvalidInput         = "❗️ Noto'g'ri ma'lumot. Iltimos, qayta kiriting:"
	msgSubscriptionRequired = "📢 Botdan foydalanish uchun avval kanalimizga obuna bo'ling:"
	msgNotSubscribed        = "❌ Siz hali kanalga obuna bo'lmadingiz!"
	msgCardCopied           = "✅ Karta raqami nusxalandi!"
	msgReceiptReceived      = "✅ Chek qabul qilindi! Admin tekshiradi."
	msgSelectCourse         = "📚 Kurs turini tanlang:"
	msgSendReceipt          = "📸 Chek rasmini yoki faylini yuboring:"
	msgUnknownCommand       = "❓ Noma'lum buyruq. Boshidan boshlang."
	msgCancelled            = "❌ Bekor qilindi."
	msgSomethingWrong       = "❗️ Xatolik yuz berdi. Qaytadan urinib ko'ring."
	msgRateLimited          = "⚠️ Siz juda tez-tez xabar yubormoqdasiz. Iltimos, biroz kuting."

	msgInvalidPhone  = "❗️ Iltimos, O'zbekiston raqamini yuboring!"
	msgForeignPhone  = "❗️ Iltimos, o'zingizning telefon raqamingizni ulashing!"
	msgInvalidName   = "❗️ Ism va familiya 2-50 ta harf bo'lishi kerak!"
	msgInvalidAge    = "❗️ Yosh 13 dan 80 gacha bo'lishi kerak!"
	msgInvalidHeight = "❗️ Bo'y 120 dan 220 sm gacha bo'lishi kerak!"
	msgInvalidWeight = "❗️ Vazn 30 dan 300 kg gacha bo'lishi kerak!"
	msgInvalidRegion = "❗️ Iltimos, ro'yxatdan viloyatni tanlang!"
)

// Тексты админки
const (
	msgAdminPanel          = "🔧 Admin Panel"
	msgAdminApprovedPrefix = "✅ TASDIQLANDI"
	msgAdminRejectedPrefix = "❌ RAD ETILDI\nSabab: %s"
	msgPaymentNotFound     = "❌ To'lov topilmadi!"
	msgAlreadyDecided      = "⚠️ Bu to'lov allaqachon ko'rib chiqilgan!"
	msgDatabaseError       = "❌ Ma'lumotlar bazasida xatolik!"
	msgInviteFailed        = "❌ Taklif havolasini yaratib bo'lmadi! Qayta urinib ko'ring."
	msgInviteResent        = "✅ Havola qayta yuborildi!"
	msgNotApproved         = "⚠️ To'lov tasdiqlanmagan!"
	msgInvalidReason       = "❌ Noto'g'ri sabab!"
	msgAskUserID           = "👤 Foydalanuvchi ID sini kiriting:"
	msgUserFound           = "✅ Foydalanuvchi topildi: %s\n\nXabaringizni kiriting:"
	msgUserNotFound        = "❌ Foydalanuvchi topilmadi!"
	msgInvalidUserID       = "❌ Noto'g'ri ID format!"
	msgMessageSent         = "✅ Xabar yuborildi!"
	msgMessageFailed       = "❌ Xabar yuborishda xatolik!"
	msgAskBroadcast        = "📢 Barcha foydalanuvchilarga yuborish uchun xabaringizni kiriting:"
	msgBroadcastProgress   = "📤 Yuborilmoqda... %d/%d"
	msgBroadcastDone       = "✅ Xabar yuborish tugallandi!\n\n✅ Muvaffaqiyatli: %d\n❌ Muvaffaqiyatsiz: %d"
	msgNoUsers             = "❌ Foydalanuvchilar yo'q!"
	msgExportEmpty         = "❌ Ma'lumotlar topilmadi!"
	msgExportFailed        = "❌ Export qilishda xatolik!"
	msgExportCaption       = "📊 Foydalanuvchilar ma'lumotlari\n📅 %s"
	msgNoPending           = "✅ Kutilayotgan to'lovlar yo'q"
	msgStatsFailed         = "❌ Statistikani olishda xatolik!"

	headerAdminMessage = "📢 Admin xabari:"
	headerBroadcast    = "📢 Umumiy xabar:"
)

const displayTimeLayout = "2006-01-02 15:04"

// formatNumber разделяет тысячи пробелом: 197000 -> "197 000".
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatSum(n int64) string {
	return formatNumber(n) + " so'm"
}

func courseButtonText(tier models.CourseTier) string {
	return fmt.Sprintf("%s - %s", tier.Name, formatSum(tier.Price))
}

func courseCardText(tier models.CourseTier) string {
	return fmt.Sprintf("%s\n\n%s\n\n💰 Narxi: %s", tier.Name, tier.Description, formatSum(tier.Price))
}

func paymentInfoText(card, owner string, amount int64) string {
	return fmt.Sprintf("💳 To'lov ma'lumotlari:\nKarta: %s\nEgasi: %s\nSumma: %s\n\n"+
		"📋 Karta raqamini nusxalash uchun tugmani bosing\n\n"+
		"💰 Pul o'tkazganingizdan so'ng chekni yuboring:", card, owner, formatSum(amount))
}

func approvalText(tier models.CourseTier, link string) string {
	return fmt.Sprintf("%s\n\n🎯 Kurs: %s\n🔗 Kanalga kirish: %s\n\n⚠️ Havola 24 soat amal qiladi!",
		msgPaymentApproved, tier.Name, link)
}

func adminReceiptCaption(p *models.Payment, courseName string, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("🆕 Yangi to'lov!\n\n")
	fmt.Fprintf(&b, "🆔 To'lov: #%d\n", p.ID)
	fmt.Fprintf(&b, "👤 Foydalanuvchi: %s\n", p.FullName)
	fmt.Fprintf(&b, "📱 Telefon: %s\n", p.Phone)
	fmt.Fprintf(&b, "💰 Kurs: %s\n", courseName)
	fmt.Fprintf(&b, "💵 Summa: %s\n", formatSum(p.Amount))
	fmt.Fprintf(&b, "📅 Vaqt: %s", p.SubmittedAt.In(loc).Format(displayTimeLayout))
	return b.String()
}

func statisticsText(stats *models.Statistics, courses *models.CourseCatalog) string {
	var b strings.Builder
	b.WriteString("📊 STATISTIKA\n\n")
	fmt.Fprintf(&b, "👥 Jami foydalanuvchilar: %d\n", stats.TotalUsers)
	fmt.Fprintf(&b, "🆕 Bugungi yangi: %d\n", stats.TodayUsers)
	fmt.Fprintf(&b, "📅 Oylik yangi: %d\n\n", stats.MonthUsers)

	b.WriteString("💰 DAROMAD:\n")
	fmt.Fprintf(&b, "💵 Jami: %s\n", formatSum(stats.TotalRevenue))
	fmt.Fprintf(&b, "📅 Bugun: %s\n", formatSum(stats.TodayRevenue))
	fmt.Fprintf(&b, "📊 Oylik: %s\n\n", formatSum(stats.MonthRevenue))

	fmt.Fprintf(&b, "⏳ Kutilmoqda: %d\n", stats.PendingPayments)
	fmt.Fprintf(&b, "✅ Tasdiqlangan: %d\n", stats.ApprovedPayments)
	fmt.Fprintf(&b, "❌ Rad etilgan: %d\n\n", stats.RejectedPayments)

	b.WriteString("📚 KURSLAR BO'YICHA:\n")
	for _, cs := range stats.CourseStats {
		fmt.Fprintf(&b, "%s: %d ta - %s\n", courses.Name(cs.CourseKey), cs.Count, formatSum(cs.Revenue))
	}
	return strings.TrimRight(b.String(), "\n")
}

func pendingPaymentsText(payments []*models.Payment, courses *models.CourseCatalog, loc *time.Location) string {
	if len(payments) == 0 {
		return msgNoPending
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏳ Kutilayotgan to'lovlar: %d\n\n", len(payments))

	shown := payments
	if len(shown) > models.PendingPreviewLimit {
		shown = shown[:models.PendingPreviewLimit]
	}
	for _, p := range shown {
		fmt.Fprintf(&b, "🆔 #%d 👤 %s\n", p.ID, p.FullName)
		fmt.Fprintf(&b, "💰 %s - %s\n", courses.Name(p.CourseKey), formatSum(p.Amount))
		fmt.Fprintf(&b, "📅 %s\n", p.SubmittedAt.In(loc).Format(displayTimeLayout))
		b.WriteString("─────────────\n")
	}

	if rest := len(payments) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "... va yana %d ta", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}

func recentUsersText(total int, users []*models.UserProfile, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 Jami foydalanuvchilar: %d\n\n", total)
	if len(users) == 0 {
		b.WriteString(msgNoUsers)
		return b.String()
	}

	b.WriteString("🆕 Oxirgi ro'yxatdan o'tganlar:\n\n")
	for _, u := range users {
		fmt.Fprintf(&b, "👤 %s (ID: %d)\n", u.FullName, u.UserID)
		fmt.Fprintf(&b, "📱 %s, 📍 %s\n", u.Phone, u.Region)
		fmt.Fprintf(&b, "📅 %s\n", u.RegisteredAt.In(loc).Format(displayTimeLayout))
	}
	return strings.TrimRight(b.String(), "\n")
}
