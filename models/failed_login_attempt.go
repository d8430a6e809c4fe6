package models

import "time"

// FailedLoginAttempt counts consecutive failed logins for a user since their last success.
type FailedLoginAttempt struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	Attempts      int       `json:"attempts" gorm:"not null;default:0"`
	LastAttemptAt time.Time `json:"last_attempt_at" gorm:"not null"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
