package models

import "time"

const (
	LeaveStatusPending  = "PENDING"
	LeaveStatusApproved = "APPROVED"
	LeaveStatusRejected = "REJECTED"
)

const (
	LeaveTypeAnnual = "ANNUAL"
	LeaveTypeSick   = "SICK"
	LeaveTypeCasual = "CASUAL"
	LeaveTypeWFH    = "WFH" // work-from-home requests go through the same approval
)

type LeaveRequest struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `gorm:"not null;index:idx_leave_user_status" json:"user_id"`
	Type      string     `gorm:"type:varchar(20);not null;default:'ANNUAL'" json:"type"`
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   time.Time  `gorm:"not null" json:"end_date"`
	Reason    string     `gorm:"type:text" json:"reason"`
	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_user_status" json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// IsPending reports whether the request still awaits a decision
func (l *LeaveRequest) IsPending() bool {
	return l.Status == LeaveStatusPending
}

// Days counts calendar days in the inclusive range
func (l *LeaveRequest) Days() int {
	if l.EndDate.Before(l.StartDate) {
		return 0
	}
	start := time.Date(l.StartDate.Year(), l.StartDate.Month(), l.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(l.EndDate.Year(), l.EndDate.Month(), l.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}

// IsValid checks the fields the store relies on
func (l *LeaveRequest) IsValid() bool {
	if l.UserID == 0 {
		return false
	}
	if l.StartDate.IsZero() || l.EndDate.IsZero() || l.EndDate.Before(l.StartDate) {
		return false
	}
	if !ValidLeaveType(l.Type) {
		return false
	}
	return ValidLeaveStatus(l.Status)
}

func ValidLeaveType(t string) bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeCasual, LeaveTypeWFH:
		return true
	}
	return false
}

func ValidLeaveStatus(s string) bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	}
	return false
}
