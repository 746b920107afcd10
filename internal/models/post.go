package models

import (
	"time"
)

// PostType distinguishes the kinds of post a user can publish.
type PostType string

const (
	// PostTypeNormal is a plain text post.
	PostTypeNormal PostType = "normal"
	// PostTypeSpread re-shares another post. Reserved; no flow creates it yet.
	PostTypeSpread PostType = "spread"
)

// Valid reports whether t is a known post type.
func (t PostType) Valid() bool {
	return t == PostTypeNormal || t == PostTypeSpread
}

// Post represents a post in Kumatter.
// Ordering is by CreatedAt only; equal timestamps fall back to ID (insertion order).
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"postId"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostType  PostType  `gorm:"size:16;not null;default:normal" json:"postType"`
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

// NewPost builds a normal post authored by userID with both timestamps set to now.
func NewPost(userID uint, content string, now time.Time) *Post {
	return &Post{
		UserID:    userID,
		Content:   content,
		PostType:  PostTypeNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
