package models

import "time"

type CourseStat struct {
	CourseKey string `json:"course_key"`
	Count     int    `json:"count"`
	Revenue   int64  `json:"revenue"`
}

// Statistics is the aggregate snapshot shown in the admin panel.
type Statistics struct {
	TotalUsers       int          `json:"total_users"`
	TodayUsers       int          `json:"today_users"`
	MonthUsers       int          `json:"month_users"`
	TotalPayments    int          `json:"total_payments"`
	ApprovedPayments int          `json:"approved_payments"`
	PendingPayments  int          `json:"pending_payments"`
	RejectedPayments int          `json:"rejected_payments"`
	TotalRevenue     int64        `json:"total_revenue"`
	TodayRevenue     int64        `json:"today_revenue"`
	MonthRevenue     int64        `json:"month_revenue"`
	CourseStats      []CourseStat `json:"course_stats"`
}

// ExportRow is one line of the user export: a user joined with one of their
// payments, or with none.
type ExportRow struct {
	UserID       int64      `json:"user_id"`
	Phone        string     `json:"phone"`
	FullName     string     `json:"full_name"`
	Age          int        `json:"age"`
	Region       string     `json:"region"`
	Height       int        `json:"height"`
	Weight       int        `json:"weight"`
	RegisteredAt time.Time  `json:"registered_at"`
	IsSubscribed bool       `json:"is_subscribed"`
	CourseKey    string     `json:"course_key,omitempty"`
	Amount       *int64     `json:"amount,omitempty"`
	Status       string     `json:"status,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}
