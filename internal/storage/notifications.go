package storage

import (
	"context"
	"fmt"
	"time"

	"talent-radar/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnqueueNotification 写入发件箱。DedupKey 已存在时不写入并返回 false。
func (s *Store) EnqueueNotification(ctx context.Context, n *model.Notification) (bool, error) {
	if n.Status == "" {
		n.Status = model.NotificationPending
	}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(n)
	if tx.Error != nil {
		return false, fmt.Errorf("enqueue notification: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// MarkNotificationSent 标记发送成功。
func (s *Store) MarkNotificationSent(ctx context.Context, id uint, at time.Time) error {
	tx := s.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).Updates(map[string]any{
		"status":     model.NotificationSent,
		"attempts":   gorm.Expr("attempts + ?", 1),
		"sent_at":    at,
		"last_error": "",
	})
	if tx.Error != nil {
		return fmt.Errorf("mark notification sent: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("mark notification sent %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkNotificationFailed 记录一次失败尝试。
func (s *Store) MarkNotificationFailed(ctx context.Context, id uint, reason string) error {
	tx := s.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).Updates(map[string]any{
		"status":     model.NotificationFailed,
		"attempts":   gorm.Expr("attempts + ?", 1),
		"last_error": reason,
	})
	if tx.Error != nil {
		return fmt.Errorf("mark notification failed: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("mark notification failed %d: %w", id, ErrNotFound)
	}
	return nil
}

// retryable 选出可重发的通知：FAILED 随时可重发；PENDING 与 SENDING 只有在 staleBefore 之前没有更新过才算遗留。
func retryable(db *gorm.DB, maxAttempts int, staleBefore time.Time) *gorm.DB {
	return db.Where("attempts < ? AND (status = ? OR (status IN ? AND updated_at < ?))",
		maxAttempts,
		model.NotificationFailed,
		[]string{string(model.NotificationPending), string(model.NotificationSending)},
		staleBefore,
	)
}

// ListRetryableNotifications 返回待重发的通知，按创建顺序。刚入队仍在发送中的记录不会出现在结果里。
func (s *Store) ListRetryableNotifications(ctx context.Context, maxAttempts int, staleBefore time.Time, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []model.Notification
	if err := retryable(s.db.WithContext(ctx), maxAttempts, staleBefore).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list retryable notifications: %w", err)
	}
	return out, nil
}

// ClaimNotification 以条件更新把通知置为 SENDING，只有抢到的一方返回 true。
func (s *Store) ClaimNotification(ctx context.Context, id uint, maxAttempts int, staleBefore time.Time) (bool, error) {
	tx := retryable(s.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id), maxAttempts, staleBefore).
		Updates(map[string]any{
			"status":     model.NotificationSending,
			"updated_at": time.Now(),
		})
	if tx.Error != nil {
		return false, fmt.Errorf("claim notification %d: %w", id, tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// MarkNotificationRead 将用户的一条通知标记为已读。
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id uint) error {
	tx := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("is_read", true)
	if tx.Error != nil {
		return fmt.Errorf("mark notification read: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("mark notification read %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead 将用户全部未读通知标记为已读，返回影响行数。
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if tx.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// ListNotificationsForUser 返回用户收到的通知，最新在前。
func (s *Store) ListNotificationsForUser(ctx context.Context, userID uint, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []model.Notification
	if err := s.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}
