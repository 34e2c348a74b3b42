package storage

import (
	"context"
	"fmt"

	"talent-radar/internal/model"

	"gorm.io/gorm"
)

// CreateApplication 在同一事务内写入申请及其分数、结论，读者不会看到只有分数没有结论的行。
func (s *Store) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Applicant", "JobPosting").Create(app).Error
	})
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetApplication 根据 ID 获取申请。
func (s *Store) GetApplication(ctx context.Context, id uint) (*model.JobApplication, error) {
	var app model.JobApplication
	if err := s.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, notFound(err, "get application")
	}
	return &app, nil
}
