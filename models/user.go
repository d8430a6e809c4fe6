package models

import (
	"strings"
	"time"
)

// User is an account that logs in with its email address.
type User struct {
	ID             uint       `json:"user_id" gorm:"primaryKey;autoIncrement"`
	Email          string     `json:"email" gorm:"type:varchar(254);not null;uniqueIndex"`
	Username       *string    `json:"username,omitempty" gorm:"type:varchar(255)"`
	Name           *string    `json:"name,omitempty" gorm:"type:varchar(255)"`
	PasswordHash   string     `json:"-" gorm:"type:text;not null"`
	ProfilePicture *string    `json:"profile_picture,omitempty" gorm:"type:text"`
	AccessToken    *string    `json:"-" gorm:"type:text"`
	LastLoginAt    *time.Time `json:"last_login,omitempty"`
	IsActive       bool       `json:"is_active" gorm:"not null;default:true"`
	IsStaff        bool       `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser    bool       `json:"is_superuser" gorm:"not null;default:false"`
	IsDeleted      bool       `json:"-" gorm:"not null;default:false;index"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	BlogPosts []BlogPost `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// CanAuthenticate reports whether the account may log in or use a token.
func (u *User) CanAuthenticate() bool {
	return u != nil && u.IsActive && !u.IsDeleted
}

// IsAdmin is true for staff and superusers.
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
