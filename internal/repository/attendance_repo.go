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

type AttendanceRepository interface {
	FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*models.Attendance, error)
	Upsert(ctx context.Context, userID uint, date time.Time) (*models.Attendance, error)
	UpdateTotalHours(ctx context.Context, attendanceID uint, totalHours float64) error
	CreateSession(ctx context.Context, attendanceID uint, checkIn time.Time) (*models.AttendanceSession, error)
	CloseSession(ctx context.Context, session *models.AttendanceSession) error
	ListSessions(ctx context.Context, attendanceID uint) ([]models.AttendanceSession, error)
	ActiveSessions(ctx context.Context, attendanceID uint) ([]models.AttendanceSession, error)
	ListByUserBetween(ctx context.Context, userID uint, from, to time.Time) ([]models.Attendance, error)
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB) (*GormAttendanceRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Attendance{}, &models.AttendanceSession{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance tables")
		return nil, err
	}

	logger.Debug("Attendance repository initialized")

	return &GormAttendanceRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormAttendanceRepository) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*models.Attendance, error) {
	var attendance models.Attendance
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&attendance)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"date":    date.Format("2006-01-02"),
		}).Debug("Attendance not found for user/date")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance by user and date")
		return nil, fmt.Errorf("find attendance: %w", result.Error)
	}

	return &attendance, nil
}

// Upsert returns the (user, date) attendance, creating it when absent. A
// concurrent insert that loses the unique index race re-reads the winner.
func (r *GormAttendanceRepository) Upsert(ctx context.Context, userID uint, date time.Time) (*models.Attendance, error) {
	attendance := models.Attendance{UserID: userID, Date: date}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		FirstOrCreate(&attendance)

	if result.Error != nil {
		existing, err := r.FindByUserAndDate(ctx, userID, date)
		if err == nil && existing != nil {
			return existing, nil
		}
		r.logger.WithError(result.Error).Error("Failed to upsert attendance")
		return nil, fmt.Errorf("upsert attendance: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.WithFields(logrus.Fields{
			"id":      attendance.ID,
			"user_id": userID,
			"date":    date.Format("2006-01-02"),
		}).Info("Attendance created")
	}

	return &attendance, nil
}

func (r *GormAttendanceRepository) UpdateTotalHours(ctx context.Context, attendanceID uint, totalHours float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("id = ?", attendanceID).
		Update("total_hours", totalHours)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update attendance total hours")
		return fmt.Errorf("update total hours: %w", result.Error)
	}

	r.logger.WithFields(logrus.Fields{
		"id":          attendanceID,
		"total_hours": totalHours,
	}).Info("Attendance total hours updated")

	return nil
}

func (r *GormAttendanceRepository) CreateSession(ctx context.Context, attendanceID uint, checkIn time.Time) (*models.AttendanceSession, error) {
	session := &models.AttendanceSession{
		AttendanceID: attendanceID,
		CheckIn:      checkIn,
	}

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create attendance session")
		return nil, fmt.Errorf("create session: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"id":            session.ID,
		"attendance_id": attendanceID,
		"check_in":      checkIn.Format("15:04:05"),
	}).Info("Attendance session opened")

	return session, nil
}

// CloseSession writes check_out and hours_worked only while check_out is still
// null. Losing that race yields ErrSessionClosed and leaves the row untouched.
func (r *GormAttendanceRepository) CloseSession(ctx context.Context, session *models.AttendanceSession) error {
	if session.CheckOut == nil || session.HoursWorked == nil {
		return fmt.Errorf("close session %d: checkout not computed", session.ID)
	}

	result := r.db.WithContext(ctx).
		Model(&models.AttendanceSession{}).
		Where("id = ? AND check_out IS NULL", session.ID).
		Updates(map[string]interface{}{
			"check_out":    *session.CheckOut,
			"hours_worked": *session.HoursWorked,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to close attendance session")
		return fmt.Errorf("close session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.WithField("id", session.ID).Warn("Attendance session was already closed")
		return ErrSessionClosed
	}

	r.logger.WithFields(logrus.Fields{
		"id":           session.ID,
		"check_out":    session.CheckOut.Format("15:04:05"),
		"hours_worked": *session.HoursWorked,
	}).Info("Attendance session closed")

	return nil
}

// ListSessions returns every session of the day, most recent check-in first
func (r *GormAttendanceRepository) ListSessions(ctx context.Context, attendanceID uint) ([]models.AttendanceSession, error) {
	return r.findSessions(r.db.WithContext(ctx).Where("attendance_id = ?", attendanceID))
}

// ActiveSessions returns the open sessions, most recent check-in first
func (r *GormAttendanceRepository) ActiveSessions(ctx context.Context, attendanceID uint) ([]models.AttendanceSession, error) {
	return r.findSessions(r.db.WithContext(ctx).Where("attendance_id = ? AND check_out IS NULL", attendanceID))
}

func (r *GormAttendanceRepository) findSessions(query *gorm.DB) ([]models.AttendanceSession, error) {
	var sessions []models.AttendanceSession

	result := query.Order("check_in DESC").Order("id DESC").Find(&sessions)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list attendance sessions")
		return nil, fmt.Errorf("list sessions: %w", result.Error)
	}

	return sessions, nil
}

func (r *GormAttendanceRepository) ListByUserBetween(ctx context.Context, userID uint, from, to time.Time) ([]models.Attendance, error) {
	var attendances []models.Attendance

	result := r.db.WithContext(ctx).
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("check_in ASC")
		}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date DESC").
		Find(&attendances)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance history")
		return nil, fmt.Errorf("list attendance: %w", result.Error)
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"count":   len(attendances),
	}).Debug("Retrieved attendance history")

	return attendances, nil
}
