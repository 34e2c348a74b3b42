package storage

import (
	"context"
	"fmt"

	"talent-radar/internal/model"

	"gorm.io/gorm"
)

// CreateUser 新增用户。
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser 根据 ID 获取用户。
func (s *Store) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "get user")
	}
	return &u, nil
}

// DeleteUser 删除用户。只要仍拥有职位、申请或偏好就拒绝删除，不做级联。
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []struct {
			model  any
			column string
		}{
			{&model.JobPosting{}, "creator_id"},
			{&model.JobApplication{}, "applicant_id"},
			{&model.JobPreference{}, "applicant_id"},
		}
		for _, o := range owned {
			var n int64
			if err := tx.Model(o.model).Where(o.column+" = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("count owned records: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("delete user %d: %w", id, ErrOwnershipViolation)
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.UserEducation{}).Error; err != nil {
			return fmt.Errorf("delete education: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserExperience{}).Error; err != nil {
			return fmt.Errorf("delete experience: %w", err)
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// CreateCategory 新增职位分类。
func (s *Store) CreateCategory(ctx context.Context, c *model.JobCategory) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListCategoriesByID 批量读取分类，顺序按 ID 升序。
func (s *Store) ListCategoriesByID(ctx context.Context, ids []uint) ([]model.JobCategory, error) {
	var cats []model.JobCategory
	if len(ids) == 0 {
		return cats, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
