package models

import "time"

// FlowData holds the typed scratch values collected during a conversation.
type FlowData struct {
	Phone        string `json:"phone,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Age          int    `json:"age,omitempty"`
	Region       string `json:"region,omitempty"`
	Height       int    `json:"height,omitempty"`
	Weight       int    `json:"weight,omitempty"`
	CourseKey    string `json:"course_key,omitempty"`
	TargetUserID int64  `json:"target_user_id,omitempty"`
}

// UserState is a user's position in the conversation.
type UserState struct {
	UserID      int64     `json:"user_id"`
	CurrentStep string    `json:"current_step"`
	Data        FlowData  `json:"data"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile builds a profile from the collected registration data.
func (d FlowData) Profile(userID int64, registeredAt time.Time) *UserProfile {
	return &UserProfile{
		UserID:       userID,
		Phone:        d.Phone,
		FullName:     d.FullName,
		Age:          d.Age,
		Region:       d.Region,
		Height:       d.Height,
		Weight:       d.Weight,
		RegisteredAt: registeredAt,
		IsSubscribed: true,
	}
}

// OutboundMessage is admin-authored content: text, or a photo or video with
// an optional caption.
type OutboundMessage struct {
	Text        string
	PhotoFileID string
	VideoFileID string
}

func (m OutboundMessage) IsEmpty() bool {
	return m.Text == "" && m.PhotoFileID == "" && m.VideoFileID == ""
}

// BroadcastResult summarises a finished broadcast.
type BroadcastResult struct {
	Total  int
	Sent   int
	Failed int
}
