package storage

import (
	"context"
	"fmt"

	"talent-radar/internal/model"
)

// PreferenceFilter 描述偏好查询条件，对应匹配谓词的三个字段。
type PreferenceFilter struct {
	CategoryID    uint
	SalaryCeiling float64
	PositionType  model.PositionType
}

// CreatePreference 写入偏好及其分类关联。
func (s *Store) CreatePreference(ctx context.Context, p *model.JobPreference) error {
	if err := s.db.WithContext(ctx).Omit("Applicant", "Categories.*").Create(p).Error; err != nil {
		return fmt.Errorf("create preference: %w", err)
	}
	return nil
}

// FindPreferences 返回满足过滤条件的偏好，附带所属求职者与分类，按 ID 升序。
func (s *Store) FindPreferences(ctx context.Context, f PreferenceFilter) ([]model.JobPreference, error) {
	db := s.db.WithContext(ctx)
	inCategory := db.Table("job_preference_categories").
		Select("job_preference_id").
		Where("job_category_id = ?", f.CategoryID)

	var prefs []model.JobPreference
	if err := db.Model(&model.JobPreference{}).
		Where("id IN (?)", inCategory).
		Where("min_salary <= ?", f.SalaryCeiling).
		Where("position_type = ?", f.PositionType).
		Preload("Applicant").
		Preload("Categories").
		Order("id ASC").
		Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("find preferences: %w", err)
	}
	return prefs, nil
}
