package repository

import (
	"context"
	"fmt"

	"hr-workflow/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, userID uint, title, message string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type GormNotificationRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormNotificationRepository(db *gorm.DB) (*GormNotificationRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate notifications table")
		return nil, err
	}

	return &GormNotificationRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormNotificationRepository) Create(ctx context.Context, userID uint, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}

	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create notification")
		return nil, fmt.Errorf("create notification: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"id":      notification.ID,
		"user_id": userID,
		"title":   title,
	}).Info("Notification created")

	return notification, nil
}

// ListByUser returns the newest notifications first; limit <= 0 means all
func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification

	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&notifications).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list notifications")
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to mark notification read")
		return fmt.Errorf("mark notification read: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
