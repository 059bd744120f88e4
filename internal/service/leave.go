package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hr-workflow/internal/models"
	"hr-workflow/internal/repository"

	"github.com/sirupsen/logrus"
)

type LeaveService struct {
	repo     repository.LeaveRequestRepository
	notifier Emitter
	clock    Clock
	logger   *logrus.Logger
}

func NewLeaveService(
	repo repository.LeaveRequestRepository,
	notifier Emitter,
	clock Clock,
) *LeaveService {
	return &LeaveService{
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		logger:   newLogger(),
	}
}

type SubmitLeaveInput struct {
	Type      string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// Submit files a PENDING leave or work-from-home request for the user.
// Sick leave may be back-dated, everything else starts today or later.
func (s *LeaveService) Submit(ctx context.Context, userID uint, input SubmitLeaveInput) (*models.LeaveRequest, error) {
	leaveType := strings.ToUpper(strings.TrimSpace(input.Type))
	if leaveType == "" {
		leaveType = models.LeaveTypeAnnual
	}
	if !models.ValidLeaveType(leaveType) {
		return nil, invalidInput("unknown leave type %q", input.Type)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, invalidInput("start and end dates are required")
	}

	start, end := DayStart(input.StartDate), DayStart(input.EndDate)
	if end.Before(start) {
		return nil, invalidInput("end date is before start date")
	}
	if leaveType != models.LeaveTypeSick && start.Before(DayStart(s.clock.Now())) {
		return nil, invalidInput("date %s is in the past", start.Format("2006-01-02"))
	}

	request := &models.LeaveRequest{
		UserID:    userID,
		Type:      leaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(input.Reason),
		Status:    models.LeaveStatusPending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, storeError("create leave request", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":      request.ID,
		"user_id": userID,
		"type":    leaveType,
		"days":    request.Days(),
	}).Info("Leave request submitted")

	return request, nil
}

// Decide moves a PENDING request to APPROVED or REJECTED and notifies the
// requester. An approval when the requester already has another approved
// leave is framed as Loss of Pay.
func (s *LeaveService) Decide(ctx context.Context, leaveID uint, decision, deciderRole string) (*models.LeaveRequest, error) {
	if deciderRole != models.RoleAdmin {
		s.logger.WithFields(logrus.Fields{
			"leave_id": leaveID,
			"role":     deciderRole,
		}).Warn("Leave decision by non-admin rejected")
		return nil, ErrForbidden
	}

	request, err := s.repo.GetByID(ctx, leaveID)
	if err != nil {
		return nil, storeError("find leave request", err)
	}
	if request == nil {
		return nil, ErrNotFound
	}

	decision = strings.ToUpper(strings.TrimSpace(decision))
	if decision != models.LeaveStatusApproved && decision != models.LeaveStatusRejected {
		return nil, invalidInput("decision must be %s or %s", models.LeaveStatusApproved, models.LeaveStatusRejected)
	}
	if !request.IsPending() {
		s.logger.WithFields(logrus.Fields{
			"leave_id": leaveID,
			"status":   request.Status,
		}).Warn("Leave request already decided")
		return nil, ErrLeaveAlreadyDecided
	}

	updated, err := s.repo.UpdateStatus(ctx, leaveID, decision, s.clock.Now())
	if errors.Is(err, repository.ErrLeaveNotPending) {
		return nil, ErrLeaveAlreadyDecided
	}
	if err != nil {
		return nil, storeError("update leave status", err)
	}

	title, message, err := s.decisionNotice(ctx, updated)
	if err != nil {
		return nil, err
	}

	if _, err := s.notifier.Emit(ctx, updated.UserID, title, message); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"leave_id": leaveID,
		"user_id":  updated.UserID,
		"status":   updated.Status,
		"notice":   title,
	}).Info("Leave request decided")

	return updated, nil
}

func (s *LeaveService) decisionNotice(ctx context.Context, request *models.LeaveRequest) (string, string, error) {
	period := fmt.Sprintf("%s leave from %s to %s",
		strings.ToLower(request.Type),
		request.StartDate.Format("2006-01-02"),
		request.EndDate.Format("2006-01-02"))

	if request.Status == models.LeaveStatusRejected {
		return models.TitleLeaveRejected, fmt.Sprintf("Your %s has been rejected.", period), nil
	}

	previous, err := s.repo.CountApproved(ctx, request.UserID, request.ID)
	if err != nil {
		return "", "", storeError("count approved leaves", err)
	}

	if previous >= 1 {
		return models.TitleLossOfPay, fmt.Sprintf(
			"Your %s has been approved. You have already used your first approved leave, so these %d day(s) will be treated as Loss of Pay.",
			period, request.Days()), nil
	}

	return models.TitleLeaveApproved, fmt.Sprintf("Your %s has been approved.", period), nil
}

func (s *LeaveService) ListMine(ctx context.Context, userID uint) ([]models.LeaveRequest, error) {
	requests, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list leave requests", err)
	}
	return requests, nil
}

// ListPending returns requests awaiting a decision, for admins only
func (s *LeaveService) ListPending(ctx context.Context, role string) ([]models.LeaveRequest, error) {
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	requests, err := s.repo.ListByStatus(ctx, models.LeaveStatusPending)
	if err != nil {
		return nil, storeError("list pending leave requests", err)
	}
	return requests, nil
}
