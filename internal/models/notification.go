package models

import "time"

const (
	TitleLeaveApproved = "Leave Approved"
	TitleLossOfPay     = "Loss of Pay Alert"
	TitleLeaveRejected = "Leave Rejected"
	TitleCheckedOut    = "Checked Out"
)

type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
