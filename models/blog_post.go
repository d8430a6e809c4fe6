package models

import (
	"time"
)

// BlogPost represents a post written by a user
type BlogPost struct {
	ID        uint      `json:"post_id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ImageURL  *string   `json:"image,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User     User      `json:"-" gorm:"foreignKey:UserID"`
	Tags     []Tag     `json:"-" gorm:"many2many:blog_post_tags;constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Tag labels blog posts; names are unique.
type Tag struct {
	ID   uint   `json:"tag_id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"type:varchar(50);not null;uniqueIndex"`
}
