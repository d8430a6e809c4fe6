package models

import "time"

// Like is a user's like on a post. A user likes a post at most once.
type Like struct {
	ID     uint `json:"like_id" gorm:"primaryKey;autoIncrement"`
	PostID uint `json:"post_id" gorm:"not null;uniqueIndex:idx_like_post_user"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_like_post_user;index"`

	Post BlogPost `json:"-" gorm:"foreignKey:PostID"`
	User User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Comment is a user's comment on a post.
type Comment struct {
	ID        uint      `json:"comment_id" gorm:"primaryKey;autoIncrement"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Post BlogPost `json:"-" gorm:"foreignKey:PostID"`
	User User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
