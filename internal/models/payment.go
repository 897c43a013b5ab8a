package models

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// IsFinal reports whether the status is a terminal decision.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentApproved || s == PaymentRejected
}

const (
	ReceiptPhoto    = "photo"
	ReceiptDocument = "document"
)

// Payment is a receipt submission for a course tier.
type Payment struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	CourseKey       string        `json:"course_key"`
	Amount          int64         `json:"amount"`
	Status          PaymentStatus `json:"status"`
	ReceiptFileID   string        `json:"receipt_file_id"`
	ReceiptKind     string        `json:"receipt_kind"`
	SubmittedAt     time.Time     `json:"submitted_at"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`
	AdminID         *int64        `json:"admin_id,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`

	// Filled from the users table on reads.
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
