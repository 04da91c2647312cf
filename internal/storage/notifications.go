package storage

import (
	"context"
	"time"

	"talento/internal/model"
)

// CreateNotification 写入一条站内通知。
func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	return translate("create notification", s.db.WithContext(ctx).Create(n).Error)
}

// ListUnreadNotifications 返回用户未读通知，最新在前，最多 limit 条。
func (s *Store) ListUnreadNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	var out []model.Notification
	q := s.db.WithContext(ctx).Where("user_id = ? AND read = ?", userID, false).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list unread notifications", err)
	}
	return out, nil
}

// ListNotificationsSince 返回 since 之后创建的未读通知，按时间升序。
func (s *Store) ListNotificationsSince(ctx context.Context, userID string, since time.Time) ([]model.Notification, error) {
	var out []model.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND read = ? AND created_at > ?", userID, false, since).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, translate("list notifications since", err)
	}
	return out, nil
}

// CountNotifications 统计用户的通知数，仅用于测试与统计。
func (s *Store) CountNotifications(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, translate("count notifications", err)
	}
	return n, nil
}

// ListNotifications 返回用户全部通知，最新在前。
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	var out []model.Notification
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate("list notifications", err)
	}
	return out, nil
}

// MarkNotificationRead 将属于用户的通知标记为已读。
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	tx := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if tx.Error != nil {
		return translate("mark notification read", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("mark notification read", ErrNotFound)
	}
	return nil
}

// DeleteReadNotificationsBefore 清理 before 之前创建的已读通知，返回删除数量。
func (s *Store) DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Where("read = ? AND created_at < ?", true, before).Delete(&model.Notification{})
	if tx.Error != nil {
		return 0, translate("prune notifications", tx.Error)
	}
	return tx.RowsAffected, nil
}
