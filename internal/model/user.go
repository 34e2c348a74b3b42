package model

import (
	"time"

	"gorm.io/datatypes"
)

// AccountType 账号类型。
type AccountType string

const (
	AccountApplicant AccountType = "APPLICANT"
	AccountHR        AccountType = "HR"
	AccountAdmin     AccountType = "ADMIN"
)

// CanPublish 仅 HR 与管理员可以发布职位。
func (a AccountType) CanPublish() bool {
	return a == AccountHR || a == AccountAdmin
}

type User struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Email       string      `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name        string      `json:"name"`
	AccountType AccountType `gorm:"size:10;not null" json:"account_type"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// UserEducation 教育经历，EndDate 为空表示尚未毕业。
type UserEducation struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Level       EducationLevel `gorm:"size:32;not null" json:"level"`
	Institution string         `json:"institution"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     *time.Time     `gorm:"index" json:"end_date"`
	CreatedAt   time.Time      `json:"created_at"`
}

// UserExperience 工作经历，EndDate 为空表示当前在职。
// Skills 为候选人自报技能。
type UserExperience struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	UserID    uint                        `gorm:"index;not null" json:"user_id"`
	Title     string                      `json:"title"`
	Company   string                      `json:"company"`
	StartDate time.Time                   `json:"start_date"`
	EndDate   *time.Time                  `json:"end_date"`
	Skills    datatypes.JSONSlice[string] `json:"skills"`
	CreatedAt time.Time                   `json:"created_at"`
}
