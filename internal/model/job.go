package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// PositionType 职位类型，封闭枚举。
type PositionType string

const (
	PositionFullTime PositionType = "FULL_TIME"
	PositionPartTime PositionType = "PART_TIME"
	PositionContract PositionType = "CONTRACT"
	PositionCoop     PositionType = "COOP"
)

// ParsePositionType 将外部输入转换为 PositionType，大小写不敏感。
func ParsePositionType(s string) (PositionType, error) {
	pt := PositionType(strings.ToUpper(strings.TrimSpace(s)))
	switch pt {
	case PositionFullTime, PositionPartTime, PositionContract, PositionCoop:
		return pt, nil
	}
	return "", fmt.Errorf("unknown position type %q", s)
}

// JobCategory 职位分类，被职位与求职偏好共同引用。
type JobCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobPosting 表示 HR 发布的职位
// - CreatorID: 发布者，创建后不可变
// - RequiredSkills: 技能关键词列表，用于筛选打分
// - IsActive: 软下线标记，职位不做物理删除
type JobPosting struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	CreatorID          uint                        `gorm:"index;not null" json:"creator_id"`
	Creator            User                        `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Title              string                      `gorm:"size:200;not null" json:"title"`
	CategoryID         uint                        `gorm:"index;not null" json:"category_id"`
	Category           JobCategory                 `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	PositionType       PositionType                `gorm:"size:20;index;not null" json:"position_type"`
	Location           string                      `gorm:"size:100" json:"location"`
	ContactEmail       string                      `json:"contact_email"`
	MinEducationLevel  EducationLevel              `gorm:"size:32;not null" json:"min_education_level"`
	MinExperienceYears int                         `gorm:"not null" json:"min_experience_years"`
	Description        string                      `json:"description"`
	RequiredSkills     datatypes.JSONSlice[string] `json:"required_skills"`
	SalaryMin          float64                     `json:"salary_min"`
	SalaryMax          float64                     `gorm:"index" json:"salary_max"`
	DueDate            time.Time                   `json:"due_date"`
	IsActive           bool                        `gorm:"index;not null" json:"is_active"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}
