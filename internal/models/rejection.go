package models

// RejectionReasons is the fixed, ordered catalogue an admin picks from when
// rejecting a receipt. Callback data refers to entries by index.
var RejectionReasons = []string{
	"Noto'g'ri summa ko'rsatilgan",
	"Chek aniq emas yoki o'qib bo'lmaydi",
	"Boshqa odamning cheki yuborilgan",
	"Chek soxta yoki tahrirlangan",
}

// RejectionReason returns the catalogue entry at idx.
func RejectionReason(idx int) (string, bool) {
	if idx < 0 || idx >= len(RejectionReasons) {
		return "", false
	}
	return RejectionReasons[idx], true
}
