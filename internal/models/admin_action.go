package models

import "time"

const (
	ActionApprovePayment = "approve_payment"
	ActionRejectPayment  = "reject_payment"
	ActionSendMessage    = "send_message"
	ActionBroadcast      = "broadcast"
	ActionExport         = "export_data"
	ActionReinvite       = "reinvite"
)

// AdminAction is an append-only audit record.
type AdminAction struct {
	ID           int64     `json:"id"`
	AdminID      int64     `json:"admin_id"`
	ActionType   string    `json:"action_type"`
	TargetUserID *int64    `json:"target_user_id,omitempty"`
	Details      string    `json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}
