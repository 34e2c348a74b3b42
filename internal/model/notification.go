package model

import "time"

// NotificationKind 通知类型。
type NotificationKind string

const (
	NotificationJobMatch        NotificationKind = "JOB_MATCH"
	NotificationScreeningPassed NotificationKind = "SCREENING_PASSED"
	NotificationScreeningFailed NotificationKind = "SCREENING_FAILED"
)

// NotificationStatus 发送状态。
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSending NotificationStatus = "SENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Notification 是发件箱记录：先落库再发送，失败后由定时任务重试。
// DedupKey 保证同一事件对同一收件人只产生一条记录。
type Notification struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	RecipientID    *uint              `gorm:"index" json:"recipient_id,omitempty"`
	RecipientEmail string             `gorm:"size:255;not null" json:"recipient_email"`
	Kind           NotificationKind   `gorm:"size:32;not null" json:"kind"`
	Subject        string             `json:"subject"`
	Body           string             `json:"body"`
	RelatedID      uint               `gorm:"index" json:"related_id"`
	EventID        string             `gorm:"size:64" json:"event_id,omitempty"`
	DedupKey       string             `gorm:"uniqueIndex;size:191;not null" json:"-"`
	Status         NotificationStatus `gorm:"size:16;index;not null" json:"status"`
	Attempts       int                `gorm:"not null" json:"attempts"`
	LastError      string             `json:"last_error,omitempty"`
	SentAt         *time.Time         `json:"sent_at,omitempty"`
	IsRead         bool               `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
