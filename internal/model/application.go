package model

import "time"

// ApplicationStatus 筛选终态。
type ApplicationStatus string

const (
	ApplicationPassed      ApplicationStatus = "PASSED"
	ApplicationScreenedOut ApplicationStatus = "SCREENED_OUT"
)

// JobApplication 求职申请。分数与结论在创建时一次性写入，之后不再修改。
type JobApplication struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	ApplicantID     uint              `gorm:"index;not null" json:"applicant_id"`
	Applicant       User              `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	JobPostingID    uint              `gorm:"index;not null" json:"job_posting_id"`
	JobPosting      JobPosting        `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	ApplicationDate time.Time         `gorm:"index" json:"application_date"`
	ScreeningScore  int               `gorm:"not null" json:"screening_score"`
	EducationScore  int               `gorm:"not null" json:"education_score"`
	ExperienceScore int               `gorm:"not null" json:"experience_score"`
	SkillsScore     int               `gorm:"not null" json:"skills_score"`
	PassedScreening bool              `gorm:"not null" json:"passed_screening"`
	Status          ApplicationStatus `gorm:"size:20;not null" json:"status"`
	ScreenedAt      time.Time         `json:"screened_at"`
}

// JobPreference 求职偏好。Categories 任一命中、MinSalary 不高于职位薪资上限、职位类型一致即视为匹配。
type JobPreference struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	ApplicantID  uint          `gorm:"index;not null" json:"applicant_id"`
	Applicant    User          `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Categories   []JobCategory `gorm:"many2many:job_preference_categories;" json:"categories"`
	MinSalary    float64       `gorm:"index" json:"min_salary"`
	PositionType PositionType  `gorm:"size:20;index;not null" json:"position_type"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
