package models

import (
	"fmt"
	"math"
	"time"
)

// Attendance is a user's summary for one calendar day. TotalHours is derived
// from the sessions and never written by callers.
type Attendance struct {
	ID         uint                `gorm:"primarykey" json:"id"`
	UserID     uint                `gorm:"not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	Date       time.Time           `gorm:"not null;uniqueIndex:idx_attendance_user_date" json:"date"`
	TotalHours float64             `gorm:"not null;default:0" json:"total_hours"`
	Sessions   []AttendanceSession `gorm:"foreignKey:AttendanceID;constraint:OnDelete:CASCADE" json:"sessions,omitempty"`
	CreatedAt  time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// AttendanceSession is one check-in/check-out interval. It is OPEN while
// CheckOut is nil and becomes CLOSED exactly once.
type AttendanceSession struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	AttendanceID uint       `gorm:"not null;index" json:"attendance_id"`
	CheckIn      time.Time  `gorm:"not null;index" json:"check_in"`
	CheckOut     *time.Time `json:"check_out"`
	HoursWorked  *float64   `json:"hours_worked"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}

// IsActive reports whether the session has not been checked out yet
func (s *AttendanceSession) IsActive() bool {
	return s.CheckOut == nil
}

// Close computes the worked hours and stamps the checkout on an open session
func (s *AttendanceSession) Close(now time.Time) error {
	if !s.IsActive() {
		return fmt.Errorf("session %d is already closed", s.ID)
	}

	hours := SessionHours(s.CheckIn, now)
	s.CheckOut = &now
	s.HoursWorked = &hours
	return nil
}

// Hours returns the worked hours, zero while the session is open
func (s *AttendanceSession) Hours() float64 {
	if s.HoursWorked == nil {
		return 0
	}
	return *s.HoursWorked
}

// FormatTime renders the session interval for chat replies
func (s *AttendanceSession) FormatTime() string {
	if s.CheckOut == nil {
		return fmt.Sprintf("in %s, still working", s.CheckIn.Format("15:04"))
	}
	return fmt.Sprintf("in %s, out %s (%.2fh)", s.CheckIn.Format("15:04"), s.CheckOut.Format("15:04"), s.Hours())
}

const centiHour = 36 * time.Second

// SessionHours returns the elapsed hours between checkIn and checkOut rounded
// half-up to two decimals. The rounding is done on the duration itself so
// values such as 1h00m18s land on 1.01 without float drift.
func SessionHours(checkIn, checkOut time.Time) float64 {
	d := checkOut.Sub(checkIn)
	if d < 0 {
		d = 0
	}

	centi := (d + centiHour/2) / centiHour
	return float64(centi) / 100
}

// SumHours adds hour values in hundredths and returns the rounded total
func SumHours(hours []float64) float64 {
	var cents int64
	for _, h := range hours {
		cents += int64(math.Round(h * 100))
	}
	return float64(cents) / 100
}

// TotalFromSessions recomputes a day's total over every session it owns
func TotalFromSessions(sessions []AttendanceSession) float64 {
	hours := make([]float64, 0, len(sessions))
	for i := range sessions {
		hours = append(hours, sessions[i].Hours())
	}
	return SumHours(hours)
}
