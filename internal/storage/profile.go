package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talent-radar/internal/model"

	"gorm.io/gorm"
)

// AddEducation 新增教育经历。
func (s *Store) AddEducation(ctx context.Context, e *model.UserEducation) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("add education: %w", err)
	}
	return nil
}

// AddExperience 新增工作经历。
func (s *Store) AddExperience(ctx context.Context, e *model.UserExperience) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("add experience: %w", err)
	}
	return nil
}

// LatestEducation 返回截至 asOf 已毕业、且毕业时间最晚的一条教育经历；没有时返回 nil, nil。
// 结束日期在 asOf 之后的记录是预计毕业，不算完成。
func (s *Store) LatestEducation(ctx context.Context, userID uint, asOf time.Time) (*model.UserEducation, error) {
	var e model.UserEducation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND end_date IS NOT NULL AND end_date <= ?", userID, asOf).
		Order("end_date DESC").Order("id DESC").
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest education: %w", err)
	}
	return &e, nil
}

// ListExperience 返回用户全部工作经历，按开始时间升序。
func (s *Store) ListExperience(ctx context.Context, userID uint) ([]model.UserExperience, error) {
	var exps []model.UserExperience
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date ASC").Order("id ASC").
		Find(&exps).Error; err != nil {
		return nil, fmt.Errorf("list experience: %w", err)
	}
	return exps, nil
}
