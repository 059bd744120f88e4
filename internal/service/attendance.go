package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hr-workflow/internal/models"
	"hr-workflow/internal/repository"

	"github.com/sirupsen/logrus"
)

type AttendanceService struct {
	repo     repository.AttendanceRepository
	notifier Emitter
	clock    Clock
	locks    *dayLocks
	logger   *logrus.Logger
}

func NewAttendanceService(
	repo repository.AttendanceRepository,
	notifier Emitter,
	clock Clock,
) *AttendanceService {
	return &AttendanceService{
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		locks:    newDayLocks(),
		logger:   newLogger(),
	}
}

// CheckOutResult is what a checkout reports back to the caller
type CheckOutResult struct {
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	SessionHours float64   `json:"session_hours"`
	TotalHours   float64   `json:"total_hours"`
}

// DaySummary is a user's attendance for one day
type DaySummary struct {
	Date       time.Time                  `json:"date"`
	CheckedIn  bool                       `json:"checked_in"`
	TotalHours float64                    `json:"total_hours"`
	Sessions   []models.AttendanceSession `json:"sessions"`
}

// CheckIn opens a new session on today's attendance, creating the day record
// on the first check-in
func (s *AttendanceService) CheckIn(ctx context.Context, userID uint) (*models.AttendanceSession, error) {
	now := s.clock.Now()
	today := DayStart(now)

	unlock := s.locks.lock(userID, today)
	defer unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"check_in": now.Format("15:04:05"),
	}).Info("User checking in")

	attendance, err := s.repo.FindByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, storeError("find attendance", err)
	}

	if attendance != nil {
		active, err := s.repo.ActiveSessions(ctx, attendance.ID)
		if err != nil {
			return nil, storeError("list active sessions", err)
		}
		if len(active) > 0 {
			s.logger.WithField("user_id", userID).Warn("User already has an active session")
			return nil, ErrAlreadyCheckedIn
		}
	} else {
		attendance, err = s.repo.Upsert(ctx, userID, today)
		if err != nil {
			return nil, storeError("create attendance", err)
		}
	}

	session, err := s.repo.CreateSession(ctx, attendance.ID, now)
	if err != nil {
		return nil, storeError("create session", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"attendance_id": attendance.ID,
		"session_id":    session.ID,
	}).Info("User checked in successfully")

	return session, nil
}

// CheckOut closes the active session of today's attendance and recomputes the
// day's total from every session it owns
func (s *AttendanceService) CheckOut(ctx context.Context, userID uint) (*CheckOutResult, error) {
	now := s.clock.Now()
	today := DayStart(now)

	unlock := s.locks.lock(userID, today)
	defer unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"check_out": now.Format("15:04:05"),
	}).Info("User checking out")

	attendance, err := s.repo.FindByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, storeError("find attendance", err)
	}
	if attendance == nil {
		s.logger.WithField("user_id", userID).Warn("Check-out without attendance today")
		return nil, ErrNotCheckedIn
	}

	active, err := s.repo.ActiveSessions(ctx, attendance.ID)
	if err != nil {
		return nil, storeError("list active sessions", err)
	}
	if len(active) == 0 {
		s.healTotal(ctx, attendance)
		return nil, ErrNoActiveSession
	}
	if len(active) > 1 {
		s.logger.WithFields(logrus.Fields{
			"user_id":       userID,
			"attendance_id": attendance.ID,
			"open_sessions": len(active),
		}).Warn("More than one open session, closing the latest")
	}

	session := active[0]
	if err := session.Close(now); err != nil {
		return nil, err
	}

	err = s.repo.CloseSession(ctx, &session)
	if errors.Is(err, repository.ErrSessionClosed) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, storeError("close session", err)
	}

	total, err := s.recomputeTotal(ctx, attendance.ID)
	if err != nil {
		return nil, err
	}

	result := &CheckOutResult{
		CheckIn:      session.CheckIn,
		CheckOut:     now,
		SessionHours: session.Hours(),
		TotalHours:   total,
	}

	message := fmt.Sprintf("You worked %.2f hours this session and %.2f hours today.", result.SessionHours, result.TotalHours)
	if _, err := s.notifier.Emit(ctx, userID, models.TitleCheckedOut, message); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"session_id":    session.ID,
		"session_hours": result.SessionHours,
		"total_hours":   result.TotalHours,
	}).Info("User checked out successfully")

	return result, nil
}

// recomputeTotal sums hours over all sessions of the day and stores it. It
// only reads after the triggering close has been written, and is safe to repeat.
func (s *AttendanceService) recomputeTotal(ctx context.Context, attendanceID uint) (float64, error) {
	sessions, err := s.repo.ListSessions(ctx, attendanceID)
	if err != nil {
		return 0, storeError("list sessions", err)
	}

	total := models.TotalFromSessions(sessions)
	if err := s.repo.UpdateTotalHours(ctx, attendanceID, total); err != nil {
		return 0, storeError("update total hours", err)
	}

	return total, nil
}

// healTotal repairs a total left stale by a checkout that failed after
// closing its session. A consistent day is not written.
func (s *AttendanceService) healTotal(ctx context.Context, attendance *models.Attendance) {
	sessions, err := s.repo.ListSessions(ctx, attendance.ID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to verify attendance total")
		return
	}

	total := models.TotalFromSessions(sessions)
	if total == attendance.TotalHours {
		return
	}

	s.logger.WithFields(logrus.Fields{
		"attendance_id": attendance.ID,
		"stored":        attendance.TotalHours,
		"recomputed":    total,
	}).Warn("Repairing stale attendance total")

	if err := s.repo.UpdateTotalHours(ctx, attendance.ID, total); err != nil {
		s.logger.WithError(err).Warn("Failed to repair attendance total")
	}
}

// Today returns today's attendance for the user, empty when not checked in
func (s *AttendanceService) Today(ctx context.Context, userID uint) (*DaySummary, error) {
	today := DayStart(s.clock.Now())
	s.logger.WithField("user_id", userID).Debug("Getting today's attendance")

	summary := &DaySummary{Date: today, Sessions: []models.AttendanceSession{}}

	attendance, err := s.repo.FindByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, storeError("find attendance", err)
	}
	if attendance == nil {
		return summary, nil
	}

	sessions, err := s.repo.ListSessions(ctx, attendance.ID)
	if err != nil {
		return nil, storeError("list sessions", err)
	}

	summary.TotalHours = attendance.TotalHours
	summary.Sessions = sessions
	for i := range sessions {
		if sessions[i].IsActive() {
			summary.CheckedIn = true
			break
		}
	}

	return summary, nil
}

// History returns attendance days between from and to inclusive, newest first
func (s *AttendanceService) History(ctx context.Context, userID uint, from, to time.Time) ([]models.Attendance, error) {
	from, to = DayStart(from), DayStart(to)
	if to.Before(from) {
		return nil, invalidInput("history range ends before it starts")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
	}).Debug("Getting attendance history")

	days, err := s.repo.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return nil, storeError("list attendance", err)
	}
	return days, nil
}

// Recent returns the last days calendar days of attendance, today included
func (s *AttendanceService) Recent(ctx context.Context, userID uint, days int) ([]models.Attendance, error) {
	if days <= 0 {
		return nil, invalidInput("day count must be positive")
	}
	to := DayStart(s.clock.Now())
	return s.History(ctx, userID, to.AddDate(0, 0, -(days-1)), to)
}
