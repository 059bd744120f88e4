package service

import (
	"context"
	"errors"

	"hr-workflow/internal/models"
	"hr-workflow/internal/repository"

	"github.com/sirupsen/logrus"
)

// Emitter records a notification for a user. Delivery is somebody else's job.
type Emitter interface {
	Emit(ctx context.Context, userID uint, title, message string) (*models.Notification, error)
}

type NotificationService struct {
	repo   repository.NotificationRepository
	logger *logrus.Logger
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: newLogger(),
	}
}

// Emit creates the notification row. A store failure fails the calling
// workflow even though its own writes already committed.
func (s *NotificationService) Emit(ctx context.Context, userID uint, title, message string) (*models.Notification, error) {
	notification, err := s.repo.Create(ctx, userID, title, message)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"title":   title,
		}).Error("Failed to emit notification")
		return nil, storeError("create notification", err)
	}
	return notification, nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storeError("list notifications", err)
	}
	return notifications, nil
}

// MarkRead marks one of the caller's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	err := s.repo.MarkRead(ctx, userID, id)
	if errors.Is(err, repository.ErrNotificationNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storeError("mark notification read", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, storeError("count unread notifications", err)
	}
	return count, nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())
	return logger
}
