package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hr-workflow/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request *models.LeaveRequest) error
	GetByID(ctx context.Context, id uint) (*models.LeaveRequest, error)
	UpdateStatus(ctx context.Context, id uint, status string, decidedAt time.Time) (*models.LeaveRequest, error)
	CountApproved(ctx context.Context, userID, excludingID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.LeaveRequest, error)
	ListByStatus(ctx context.Context, status string) ([]models.LeaveRequest, error)
}

type GormLeaveRequestRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveRequestRepository(db *gorm.DB) (*GormLeaveRequestRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.LeaveRequest{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate leave_requests table")
		return nil, err
	}

	logger.Debug("Leave request repository initialized")

	return &GormLeaveRequestRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormLeaveRequestRepository) Create(ctx context.Context, request *models.LeaveRequest) error {
	if !request.IsValid() {
		r.logger.WithField("user_id", request.UserID).Warn("Invalid leave request data")
		return errors.New("invalid leave request data")
	}

	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create leave request")
		return fmt.Errorf("create leave request: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"id":      request.ID,
		"user_id": request.UserID,
		"type":    request.Type,
		"start":   request.StartDate.Format("2006-01-02"),
		"end":     request.EndDate.Format("2006-01-02"),
	}).Info("Leave request created")

	return nil
}

func (r *GormLeaveRequestRepository) GetByID(ctx context.Context, id uint) (*models.LeaveRequest, error) {
	var request models.LeaveRequest
	result := r.db.WithContext(ctx).First(&request, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Leave request not found")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get leave request by ID")
		return nil, fmt.Errorf("find leave request: %w", result.Error)
	}

	return &request, nil
}

// UpdateStatus moves a PENDING request to status. The write is conditional on
// the row still being PENDING, so a concurrent decision yields ErrLeaveNotPending.
func (r *GormLeaveRequestRepository) UpdateStatus(ctx context.Context, id uint, status string, decidedAt time.Time) (*models.LeaveRequest, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LeaveRequest{}).
		Where("id = ? AND status = ?", id, models.LeaveStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_at": decidedAt,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update leave request status")
		return nil, fmt.Errorf("update leave status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.WithField("id", id).Warn("Leave request was not pending")
		return nil, ErrLeaveNotPending
	}

	r.logger.WithFields(logrus.Fields{
		"id":     id,
		"status": status,
	}).Info("Leave request status updated")

	request, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("leave request %d vanished after update", id)
	}
	return request, nil
}

// CountApproved counts the user's approved requests other than excludingID
func (r *GormLeaveRequestRepository) CountApproved(ctx context.Context, userID, excludingID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.LeaveRequest{}).
		Where("user_id = ? AND status = ? AND id <> ?", userID, models.LeaveStatusApproved, excludingID).
		Count(&count)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to count approved leave requests")
		return 0, fmt.Errorf("count approved leaves: %w", result.Error)
	}

	return count, nil
}

func (r *GormLeaveRequestRepository) ListByUser(ctx context.Context, userID uint) ([]models.LeaveRequest, error) {
	var requests []models.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&requests).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list leave requests by user")
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return requests, nil
}

func (r *GormLeaveRequestRepository) ListByStatus(ctx context.Context, status string) ([]models.LeaveRequest, error) {
	var requests []models.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list leave requests by status")
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return requests, nil
}
