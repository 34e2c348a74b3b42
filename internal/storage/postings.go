package storage

import (
	"context"
	"fmt"
	"time"

	"talent-radar/internal/model"
)

// CreatePosting 写入职位。
func (s *Store) CreatePosting(ctx context.Context, p *model.JobPosting) error {
	if err := s.db.WithContext(ctx).Omit("Creator", "Category").Create(p).Error; err != nil {
		return fmt.Errorf("create posting: %w", err)
	}
	return nil
}

// GetPosting 根据 ID 获取职位，附带发布者信息。
func (s *Store) GetPosting(ctx context.Context, id uint) (*model.JobPosting, error) {
	var p model.JobPosting
	if err := s.db.WithContext(ctx).Preload("Creator").First(&p, id).Error; err != nil {
		return nil, notFound(err, "get posting")
	}
	return &p, nil
}

// DeactivatePosting 软下线职位。
func (s *Store) DeactivatePosting(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Model(&model.JobPosting{}).Where("id = ?", id).Update("is_active", false)
	if tx.Error != nil {
		return fmt.Errorf("deactivate posting: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("deactivate posting %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeactivateExpiredPostings 将截止日期早于 now 的在招职位下线，返回影响行数。
func (s *Store) DeactivateExpiredPostings(ctx context.Context, now time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.JobPosting{}).
		Where("is_active = ? AND due_date < ?", true, now).
		Update("is_active", false)
	if tx.Error != nil {
		return 0, fmt.Errorf("deactivate expired postings: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}
