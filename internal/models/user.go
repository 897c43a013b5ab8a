package models

import "time"

// UserProfile is a fully registered participant.
type UserProfile struct {
	UserID       int64     `json:"user_id"`
	Phone        string    `json:"phone"`
	FullName     string    `json:"full_name"`
	Age          int       `json:"age"`
	Region       string    `json:"region"`
	Height       int       `json:"height"`
	Weight       int       `json:"weight"`
	RegisteredAt time.Time `json:"registered_at"`
	IsSubscribed bool      `json:"is_subscribed"`
}
